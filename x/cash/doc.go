/*
Package cash is the value ledger the escrow engine settles on.

It keeps one wallet per account address and exposes a Controller with
balance-preserving, all-or-nothing transfers. The engine consumes it as an
opaque collaborator: create an account, move funds, query a balance, close
an emptied account.
*/
package cash
