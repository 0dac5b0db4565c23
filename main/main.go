// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-plugin"
	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/vms/rpcchainvm"

	"github.com/ava-labs/calculatorvm/calculatorvm"
)

func main() {
	params, err := parseParams(os.Args[1:])
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print VM ID and exit
	if params.version {
		fmt.Printf("%s@%s\n", calculatorvm.Name, calculatorvm.Version)
		os.Exit(0)
	}

	// Replaced by the chain config's level once the VM is initialized
	log.Root().SetHandler(log.LvlFilterHandler(params.logLevel, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: rpcchainvm.Handshake,
		Plugins: map[string]plugin.Plugin{
			"vm": rpcchainvm.New(&calculatorvm.VM{}),
		},

		// A non-nil value here enables gRPC serving for this plugin...
		GRPCServer: plugin.DefaultGRPCServer,
	})
}
