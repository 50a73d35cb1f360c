// Command s3gw is the gateway process entrypoint.
package main

import (
	"github.com/ajay-paratmandali/s3gw/cmd/s3gw/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.Exit("%v", err)
	}
}
