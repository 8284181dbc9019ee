/*
Package escrow implements the custodial settlement of two-party trade with
optional third-party arbitration.

A buyer initializes an order by depositing the price into a vault, a
custodial account derived from the order code with no corresponding private
key. The seller ships, the buyer confirms delivery and the seller collects
with exchange. Either side can back out: the buyer cancels before shipment,
the seller refunds after it, and a judge rules on disputes. Partial
settlement and additional buyer funding are first-class operations.

Each operation verifies the record, the required signer, the bound ledger
accounts and the current status before moving any funds. A failed check
aborts the whole operation with no side effect.
*/
package escrow
