// Package chain implements domain.ChainClient against a Substrate node using
// go-substrate-rpc-client.
//
// A Connection caches the runtime metadata fetched at connect time, signs
// balance transfers with an sr25519 keyring pair and follows the submitted
// extrinsic until it is included in a block or dropped. Events of the included
// extrinsic are decoded through the registry event retriever.
package chain
