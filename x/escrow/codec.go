package escrow

import amino "github.com/tendermint/go-amino"

// cdc serializes all models persisted by this package.
var cdc = amino.NewCodec()
