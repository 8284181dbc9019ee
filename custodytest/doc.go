/*
Package custodytest provides mocked implementations of the core interfaces,
to be used when testing extensions and the engine.
*/
package custodytest
