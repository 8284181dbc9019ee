/*
Package custody defines the common contracts that tie the module together:
conditions and addresses for authorization, messages and transactions,
handlers, and the key-value store with cache-wrap commit semantics.

The escrow settlement logic lives in x/escrow, the ledger it moves funds on
in x/cash, and the synchronous engine that applies one operation atomically
in app.
*/
package custody
