// Command csvload appends the rows of a CSV file to an existing database table.
//
// Usage:
//
//	csvload [flags] <file.csv> <table>
//
// Connection settings come from the environment (DB_SERVER, DB_DATABASE,
// DB_USER, DB_PASSWORD, DB_SCHEMA), optionally loaded from a .env file.
// The exit status identifies the failing stage: 2 configuration,
// 3 connection, 4 read, 5 schema, 6 write.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
