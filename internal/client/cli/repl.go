package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Signup(ctx context.Context, name string, protect bool) error
	Users(ctx context.Context) error
	Key(ctx context.Context, ref string) error
	Send(ctx context.Context, ref string, text []byte, plain bool) error
	Recv(ctx context.Context) error
	Status(ctx context.Context) error
}

const replHelp = `Available commands:
  signup <name> [protect]     register and store a new identity
  users                       list the other users
  key <peer>                  show a peer's public key
  send <peer> <text...>       send sealed text
  sendplain <peer> <text...>  send unencrypted text
  recv                        fetch and open your messages
  status                      server health
  exit | quit                 leave`

// runREPL starts a read–eval–print loop over the same commands as the
// command line. Errors are reported and the loop goes on; it exits on EOF
// or on "exit"/"quit".
func runREPL(ctx context.Context, a execIface, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprint(out, "msgrelay> ")
		line, err := in.ReadString('\n')
		if line == "" && err != nil {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(out, replHelp)
		case "signup":
			if len(args) == 0 {
				fmt.Fprintln(out, "Usage: signup <name> [protect]")
				continue
			}
			cmdErr = a.Signup(ctx, args[0], len(args) > 1 && args[1] == "protect")
		case "users":
			cmdErr = a.Users(ctx)
		case "key":
			if len(args) != 1 {
				fmt.Fprintln(out, "Usage: key <peer>")
				continue
			}
			cmdErr = a.Key(ctx, args[0])
		case "send", "sendplain":
			if len(args) < 2 {
				fmt.Fprintf(out, "Usage: %s <peer> <text...>\n", cmd)
				continue
			}
			cmdErr = a.Send(ctx, args[0], []byte(strings.Join(args[1:], " ")), cmd == "sendplain")
		case "recv":
			cmdErr = a.Recv(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
