package editcontext

import "strings"

// Message is a single validation message.
type Message struct {
	// Field is the field the message is reported against.
	Field FieldIdentifier

	// Path is the full property path from the model root, e.g. "Address.Line1".
	Path string

	Text string

	seq uint64
}

// MessageStore holds the messages one validator reports into an edit context.
// Clearing a store only removes that validator's messages.
type MessageStore struct {
	ec       *EditContext
	messages map[FieldIdentifier][]Message
}

// NewMessageStore creates a store whose messages are visible through ec.
func NewMessageStore(ec *EditContext) *MessageStore {
	store := &MessageStore{
		ec:       ec,
		messages: make(map[FieldIdentifier][]Message),
	}

	ec.mu.Lock()
	ec.stores = append(ec.stores, store)
	ec.mu.Unlock()

	return store
}

// Add reports text against field. The message path is the field name.
func (s *MessageStore) Add(field FieldIdentifier, text string) {
	s.AddAt(field.FieldName, field, text)
}

// AddAt reports text against field, recording the full property path.
func (s *MessageStore) AddAt(path string, field FieldIdentifier, text string) {
	s.ec.mu.Lock()
	defer s.ec.mu.Unlock()

	s.addLocked([]Message{{Field: field, Path: path, Text: text}})
}

// For returns the texts this store holds for field.
func (s *MessageStore) For(field FieldIdentifier) []string {
	s.ec.mu.RLock()
	defer s.ec.mu.RUnlock()

	msgs := s.messages[field]
	out := make([]string, 0, len(msgs))

	for _, msg := range msgs {
		out = append(out, msg.Text)
	}

	return out
}

// ClearField removes this store's messages for field.
func (s *MessageStore) ClearField(field FieldIdentifier) {
	s.ec.mu.Lock()
	defer s.ec.mu.Unlock()

	delete(s.messages, field)
}

// ClearPath removes this store's messages whose path is path or lies beneath
// it ("Address" also clears "Address.Line1" and "Address[0]").
func (s *MessageStore) ClearPath(path string) {
	s.ec.mu.Lock()
	defer s.ec.mu.Unlock()

	s.clearPathLocked(path)
}

// Clear removes all of this store's messages.
func (s *MessageStore) Clear() {
	s.ec.mu.Lock()
	defer s.ec.mu.Unlock()

	clear(s.messages)
}

// Replace swaps every message of this store for msgs in one step, so readers
// of the edit context see either the old messages or the new ones. Only the
// Field, Path and Text of each message are used.
//
//	store.Replace([]editcontext.Message{
//	    {Field: ec.Field("Email"), Path: "Email", Text: "'Email' must not be empty."},
//	})
func (s *MessageStore) Replace(msgs []Message) {
	s.ec.mu.Lock()
	defer s.ec.mu.Unlock()

	clear(s.messages)
	s.addLocked(msgs)
}

// ReplaceAt swaps the messages of field, and of every path at or beneath
// path, for msgs in one step. Messages on other fields are kept.
func (s *MessageStore) ReplaceAt(path string, field FieldIdentifier, msgs []Message) {
	s.ec.mu.Lock()
	defer s.ec.mu.Unlock()

	delete(s.messages, field)
	s.clearPathLocked(path)
	s.addLocked(msgs)
}

func (s *MessageStore) addLocked(msgs []Message) {
	for _, msg := range msgs {
		s.ec.nextSeq++
		msg.seq = s.ec.nextSeq
		s.messages[msg.Field] = append(s.messages[msg.Field], msg)
	}
}

func (s *MessageStore) clearPathLocked(path string) {
	for field, msgs := range s.messages {
		kept := msgs[:0]

		for _, msg := range msgs {
			if !isSameOrNested(msg.Path, path) {
				kept = append(kept, msg)
			}
		}

		if len(kept) == 0 {
			delete(s.messages, field)
		} else {
			s.messages[field] = kept
		}
	}
}

func isSameOrNested(candidate, path string) bool {
	if !strings.HasPrefix(candidate, path) {
		return false
	}

	rest := candidate[len(path):]

	return rest == "" || rest[0] == '.' || rest[0] == '['
}
