package drivestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Folder is a node in the in-memory hierarchy.
type Folder struct {
	ID       string
	ParentID string
	Name     string
}

// Document is a document node; Parents mirrors stores that model folder
// membership as a multi-parent association.
type Document struct {
	ID      string
	Name    string
	Parents []string
}

// Memory is an in-process Hierarchy used by tests and local development.
type Memory struct {
	mu        sync.Mutex
	folders   map[string]*Folder
	documents map[string]*Document

	createCalls int
	copyCalls   int
}

func NewMemory() *Memory {
	return &Memory{
		folders:   make(map[string]*Folder),
		documents: make(map[string]*Document),
	}
}

// SeedDocument registers a template document so it can be copied.
func (m *Memory) SeedDocument(id, name, parentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[id] = &Document{ID: id, Name: name, Parents: []string{parentID}}
}

func (m *Memory) CreateSubfolder(ctx context.Context, parentID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	id := uuid.New().String()
	m.folders[id] = &Folder{ID: id, ParentID: parentID, Name: name}
	return id, nil
}

func (m *Memory) CopyAndRenameDocument(ctx context.Context, templateID, newName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.copyCalls++
	src, ok := m.documents[templateID]
	if !ok {
		return "", fmt.Errorf("template document %s not found", templateID)
	}

	id := uuid.New().String()
	m.documents[id] = &Document{
		ID:      id,
		Name:    newName,
		Parents: append([]string(nil), src.Parents...),
	}
	return id, nil
}

func (m *Memory) MoveDocument(ctx context.Context, documentID, toFolderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[documentID]
	if !ok {
		return fmt.Errorf("document %s not found", documentID)
	}
	doc.Parents = []string{toFolderID}
	return nil
}

// FolderByName finds a folder by its display name.
func (m *Memory) FolderByName(name string) (*Folder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folders {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// DocumentByName finds a document by its display name.
func (m *Memory) DocumentByName(name string) (*Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.documents {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

func (m *Memory) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

func (m *Memory) CopyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyCalls
}
