package jsonfile

import (
	"context"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
)

// SessionStore keeps one session record per wallet address in a single JSON
// object file.
type SessionStore struct {
	file *file
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(path string) (*SessionStore, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	return &SessionStore{file: f}, nil
}

func (s *SessionStore) Load(ctx context.Context) (map[string]domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.file.mu.RLock()
	defer s.file.mu.RUnlock()

	entries, err := s.readEntries()
	if err != nil {
		return nil, err
	}

	records := make(map[string]domain.SessionRecord, len(entries))
	for address, entry := range entries {
		records[address] = fromSchema(entry)
	}

	return records, nil
}

func (s *SessionStore) Get(ctx context.Context, address string) (domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionRecord{}, err
	}

	s.file.mu.RLock()
	defer s.file.mu.RUnlock()

	entries, err := s.readEntries()
	if err != nil {
		return domain.SessionRecord{}, err
	}

	entry, ok := entries[address]
	if !ok {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}

	return fromSchema(entry), nil
}

func (s *SessionStore) Save(ctx context.Context, address string, record domain.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		return err
	}

	entries[address] = toSchema(record)

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.file.write(entries)
}

func (s *SessionStore) readEntries() (map[string]sessionSchema, error) {
	entries := map[string]sessionSchema{}
	if err := s.file.read(&entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]sessionSchema{}
	}

	return entries, nil
}
