// Package cli implements the msgrelay command line client.
//
// Commands
//
//	signup <name> [--protect]   register with the relay and create the local profile
//	users                       list the other users (refreshes the peer cache)
//	key <peer>                  fetch a peer's public key
//	send <peer> [text...]       send text, sealed unless --plain; stdin when no text
//	recv                        drain and open queued messages
//	status                      query the gRPC health endpoint
//	shell                       interactive loop over the commands above
//
// A peer is named either by its id or by its user name. Names are resolved
// through the local peer cache, which is refreshed from the server on a miss.
package cli
