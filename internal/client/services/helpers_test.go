package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/msgrelay/internal/client/repositories"
	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openRepos(t *testing.T) *repositories.Repositories {
	t.Helper()
	r, err := repositories.InitDatabase(context.Background(), "file:"+filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

type sent struct {
	self, target uuid.UUID
	msgType      protocol.MessageType
	content      []byte
}

// fakeRelay is an in-memory client.Client.
type fakeRelay struct {
	mu       sync.Mutex
	names    map[uuid.UUID]string
	keys     map[uuid.UUID]protocol.PublicKey
	queue    map[uuid.UUID][]protocol.MessageRecord
	sent     []sent
	lastID   uint32
	err      error
	keyCalls int
	users    int
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		names: map[uuid.UUID]string{},
		keys:  map[uuid.UUID]protocol.PublicKey{},
		queue: map[uuid.UUID][]protocol.MessageRecord{},
	}
}

func (f *fakeRelay) add(name string, key protocol.PublicKey) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.names[id] = name
	f.keys[id] = key
	return id
}

func (f *fakeRelay) Signup(_ context.Context, name string, key protocol.PublicKey) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.add(name, key), nil
}

func (f *fakeRelay) Users(_ context.Context, self uuid.UUID) ([]protocol.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users++
	if f.err != nil {
		return nil, f.err
	}
	var out []protocol.UserRecord
	for id, name := range f.names {
		if id != self {
			out = append(out, protocol.UserRecord{ClientID: id, Name: name})
		}
	}
	return out, nil
}

func (f *fakeRelay) PublicKey(_ context.Context, _, target uuid.UUID) (protocol.PublicKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyCalls++
	if f.err != nil {
		return protocol.PublicKey{}, f.err
	}
	return f.keys[target], nil
}

func (f *fakeRelay) Send(_ context.Context, self, target uuid.UUID, msgType protocol.MessageType, content []byte) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.lastID++
	f.sent = append(f.sent, sent{self: self, target: target, msgType: msgType, content: content})
	f.queue[target] = append(f.queue[target], protocol.MessageRecord{SourceID: self, MessageID: f.lastID, Type: msgType, Content: content})
	return f.lastID, nil
}

func (f *fakeRelay) Read(_ context.Context, self uuid.UUID) ([]protocol.MessageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	msgs := f.queue[self]
	delete(f.queue, self)
	return msgs, nil
}
