/*
Package errors implements custom error interfaces for the custody engine.

Each returned error is categorized by wrapping one of the root errors
declared in this package. Test for a category with the root error Is method:

  if errors.ErrNotFound.Is(err) { ... }

Create a new error instance by wrapping a root error:

  errors.Wrapf(errors.ErrState, "cannot ship order in status %s", status)

Extensions register their own root errors with Register, using a unique
error code.
*/
package errors
