package cli

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/msgrelay/internal/client/client"
	"github.com/dmitrijs2005/msgrelay/internal/client/config"
	"github.com/dmitrijs2005/msgrelay/internal/client/repositories"
	"github.com/dmitrijs2005/msgrelay/internal/client/services"
	"github.com/dmitrijs2005/msgrelay/internal/cryptox"
	"github.com/google/uuid"
)

// App binds the client services to a terminal.
type App struct {
	config     *config.Config
	repos      *repositories.Repositories
	account    services.AccountService
	messenger  services.MessengerService
	passphrase []byte

	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local profile and connects the services to the relay
// named in c.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	dsn, err := c.ProfileDSN()
	if err != nil {
		return nil, err
	}

	repos, err := repositories.InitDatabase(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}

	relay := client.NewTCPClient(c.ServerAddr, c.Timeout)
	return &App{
		config:    c,
		repos:     repos,
		account:   services.NewAccountService(relay, repos.Profile),
		messenger: services.NewMessengerService(relay, repos.Peers),
		in:        in,
		reader:    bufio.NewReader(in),
		out:       out,
	}, nil
}

func (a *App) Close() error {
	return a.repos.Close()
}

func (a *App) self(ctx context.Context) (uuid.UUID, error) {
	p, err := a.account.Profile(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// askPassphrase returns the --passphrase value or prompts for one. The
// returned release func wipes a prompted passphrase.
func (a *App) askPassphrase() ([]byte, func(), error) {
	if len(a.passphrase) > 0 {
		return a.passphrase, func() {}, nil
	}
	if !interactive(a.in) {
		return nil, nil, errors.New("passphrase required (--passphrase)")
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return nil, nil, err
	}
	return pw, func() { cryptox.Wipe(pw) }, nil
}

func (a *App) Signup(ctx context.Context, name string, protect bool) error {
	var passphrase []byte
	if protect {
		pw, release, err := a.askPassphrase()
		if err != nil {
			return err
		}
		defer release()
		passphrase = pw
	}

	p, err := a.account.Signup(ctx, name, passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s (%s)\n", p.Name, p.ID)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	self, err := a.self(ctx)
	if err != nil {
		return err
	}
	users, err := a.messenger.Users(ctx, self)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No other users")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%s  %s\n", u.ID, u.Name)
	}
	return nil
}

func (a *App) Key(ctx context.Context, ref string) error {
	self, err := a.self(ctx)
	if err != nil {
		return err
	}
	p, err := a.messenger.Peer(ctx, self, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s  %s\n", p.ID, p.Name, hex.EncodeToString(p.PublicKey))
	return nil
}

func (a *App) Send(ctx context.Context, ref string, text []byte, plain bool) error {
	self, err := a.self(ctx)
	if err != nil {
		return err
	}
	id, err := a.messenger.Send(ctx, self, ref, text, plain)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Message %d queued for %s\n", id, ref)
	return nil
}

// readBody returns the text to send when none was given as arguments:
// piped stdin is read whole, a terminal is prompted.
func (a *App) readBody() ([]byte, error) {
	if interactive(a.in) {
		text, err := GetMultiline(a.reader, "Message", a.out)
		return []byte(text), err
	}
	b, err := io.ReadAll(a.reader)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(string(b), "\r\n")), nil
}

func (a *App) Recv(ctx context.Context) error {
	p, err := a.account.Profile(ctx)
	if err != nil {
		return err
	}
	var passphrase []byte
	if p.Protected() {
		pw, release, err := a.askPassphrase()
		if err != nil {
			return err
		}
		defer release()
		passphrase = pw
	}
	id, err := a.account.Unlock(ctx, passphrase)
	if err != nil {
		return err
	}

	msgs, err := a.messenger.Receive(ctx, id)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages")
		return nil
	}
	for _, m := range msgs {
		from := m.FromName
		if from == "" {
			from = m.From.String()
		}
		switch {
		case m.Err != nil:
			fmt.Fprintf(a.out, "#%d from %s: cannot open: %v\n", m.MessageID, from, m.Err)
		case m.Type == services.MessageTypeSealedText, m.Type == services.MessageTypePlainText:
			fmt.Fprintf(a.out, "#%d from %s: %s\n", m.MessageID, from, m.Text)
		default:
			fmt.Fprintf(a.out, "#%d from %s: type %d, %d bytes\n", m.MessageID, from, m.Type, len(m.Text))
		}
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	st, err := client.CheckHealth(ctx, a.config.HealthAddr)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", a.config.HealthAddr, st)
	return nil
}
