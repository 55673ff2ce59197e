// Package storage provides persistence for jobs, knowledge entries, chat
// history, certificates, and the vector slot registry.
package storage

import (
	"context"
	"errors"

	"github.com/campushq/naitei/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Slot kinds registered in the vector slot table.
const (
	SlotKindJob       = "job"
	SlotKindKnowledge = "knowledge"
	SlotKindDocument  = "document"
)

// SlotRef maps a vector index slot back to the record embedded at that slot.
type SlotRef struct {
	Slot  int
	Kind  string
	RefID string
}

// Storage is the persistence interface for the service.
type Storage interface {
	// Jobs.
	UpsertJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context) ([]*models.Job, error)
	CountJobs(ctx context.Context) (int64, error)

	// Knowledge entries.
	UpsertKnowledge(ctx context.Context, entry *models.KnowledgeEntry) error
	GetKnowledge(ctx context.Context, id string) (*models.KnowledgeEntry, error)
	ListKnowledge(ctx context.Context) ([]*models.KnowledgeEntry, error)

	// Chat history.
	AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)

	// Certificates.
	CreateCertificate(ctx context.Context, cert *models.Certificate) error
	GetCertificate(ctx context.Context, id string) (*models.Certificate, error)

	// Vector slot registry. ReplaceSlots atomically replaces all mappings of
	// one kind; ResolveSlot returns ErrNotFound for unregistered slots.
	ReplaceSlots(ctx context.Context, kind string, refs []SlotRef) error
	RecordSlots(ctx context.Context, refs []SlotRef) error
	ResolveSlot(ctx context.Context, slot int) (*SlotRef, error)

	Close() error
}
