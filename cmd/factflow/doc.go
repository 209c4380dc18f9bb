// Command factflow manages fact-check work items and runs the factflow API
// server.
//
// Every command except serve works directly against the SQLite database named
// by the configuration, so the CLI is usable whether or not a server is
// running. The server holds an exclusive lock only against other servers.
package main
