// Command demoadmin is the operator CLI: schema migration, seeding, admin
// bootstrap, listings and flow editing straight against the database.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
