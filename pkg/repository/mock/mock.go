package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/models"
)

// Test helpers and mocks. The interview and task mocks share storage so
// GetWithTasks reflects upserts and deletes.
type Mocks struct {
	UserRepo       *mockUserRepo
	InterviewRepo  *mockInterviewRepo
	TaskRepo       *mockTaskRepo
	ResultRepo     *mockResultRepo
	InvitationRepo *mockInvitationRepo
}

func NewMocks() *Mocks {
	ivs := &mockInterviewRepo{Stored: map[string]*models.Interview{}}
	return &Mocks{
		UserRepo:       &mockUserRepo{},
		InterviewRepo:  ivs,
		TaskRepo:       &mockTaskRepo{ivs: ivs},
		ResultRepo:     &mockResultRepo{Stored: map[string][]models.CandidateResult{}},
		InvitationRepo: &mockInvitationRepo{},
	}
}

type mockUserRepo struct {
	Stored    *models.User
	CreateErr error
	GetErr    error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.Stored = &models.User{ID: "user-1", Email: strings.ToLower(u.Email), Name: u.Name, Company: u.Company, PasswordHash: u.PasswordHash}
	return m.Stored.ID, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Stored != nil && m.Stored.Email == strings.ToLower(email) {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	m.Stored = u
	return nil
}

type mockInterviewRepo struct {
	Stored    map[string]*models.Interview
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error
	Updates   int
	seq       int
}

// Put stores a copy of iv, assigning an id when missing.
func (m *mockInterviewRepo) Put(iv *models.Interview) *models.Interview {
	c := iv.Clone()
	if c.ID == "" {
		m.seq++
		c.ID = fmt.Sprintf("interview-%d", m.seq)
	}
	if c.Tasks == nil {
		c.Tasks = []models.Task{}
	}
	m.Stored[c.ID] = c
	return c.Clone()
}

func (m *mockInterviewRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]models.Interview, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Interview{}
	for _, iv := range m.Stored {
		if iv.OwnerEmail == ownerEmail {
			c := iv.Clone()
			c.Tasks = []models.Task{}
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockInterviewRepo) GetWithTasks(ctx context.Context, id string) (*models.Interview, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if iv, ok := m.Stored[id]; ok {
		return iv.Clone(), nil
	}
	return nil, nil
}

func (m *mockInterviewRepo) CreateInterview(ctx context.Context, iv *models.Interview) (*models.Interview, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	c := iv.Clone()
	c.ID = ""
	return m.Put(c), nil
}

func (m *mockInterviewRepo) UpdateInterview(ctx context.Context, iv *models.Interview) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	stored, ok := m.Stored[iv.ID]
	if !ok {
		return fmt.Errorf("interview %s not found", iv.ID)
	}
	m.Updates++
	stored.Title = iv.Title
	stored.Status = iv.Status
	stored.GeneralCriteria = models.CloneCriteria(iv.GeneralCriteria)
	if stored.Status != models.StatusDraft && stored.Stats == nil {
		stored.Stats = &models.Stats{}
	}
	return nil
}

type mockTaskRepo struct {
	ivs       *mockInterviewRepo
	UpsertErr error
	DeleteErr error
	// DropRefs lists client_refs the store silently refuses to return.
	DropRefs []string
	Upserts  [][]models.Task
	Deletes  [][]string
	seq      int
}

func (m *mockTaskRepo) UpsertTasks(ctx context.Context, interviewID string, tasks []models.Task) ([]models.Task, error) {
	m.Upserts = append(m.Upserts, models.CloneTasks(tasks))
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	iv, ok := m.ivs.Stored[interviewID]
	if !ok {
		return nil, fmt.Errorf("interview %s not found", interviewID)
	}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if m.dropped(t.ClientRef) {
			continue
		}
		t = t.Clone()
		if t.ID == "" {
			m.seq++
			t.ID = fmt.Sprintf("task-%d", m.seq)
		}
		t.InterviewID = interviewID
		t.SupportingFiles = nil

		replaced := false
		for i := range iv.Tasks {
			if iv.Tasks[i].ID == t.ID {
				iv.Tasks[i] = t.Clone()
				replaced = true
			}
		}
		if !replaced {
			iv.Tasks = append(iv.Tasks, t.Clone())
		}
		out = append(out, t)
	}
	sort.SliceStable(iv.Tasks, func(i, j int) bool { return iv.Tasks[i].Order < iv.Tasks[j].Order })
	return out, nil
}

func (m *mockTaskRepo) dropped(ref string) bool {
	for _, r := range m.DropRefs {
		if ref != "" && r == ref {
			return true
		}
	}
	return false
}

func (m *mockTaskRepo) DeleteTasks(ctx context.Context, ids []string) error {
	m.Deletes = append(m.Deletes, append([]string{}, ids...))
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	for _, iv := range m.ivs.Stored {
		kept := iv.Tasks[:0]
		for _, t := range iv.Tasks {
			if !drop[t.ID] {
				kept = append(kept, t)
			}
		}
		iv.Tasks = kept
	}
	return nil
}

type mockResultRepo struct {
	Stored    map[string][]models.CandidateResult
	ListErr   error
	CreateErr error
	UpdateErr error
	Updated   []models.CandidateResult
	seq       int
}

func (m *mockResultRepo) ListCandidates(ctx context.Context, interviewID string) ([]models.CandidateResult, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.CandidateResult{}
	for _, c := range m.Stored[interviewID] {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (m *mockResultRepo) GetCandidate(ctx context.Context, id string) (*models.CandidateResult, error) {
	for _, list := range m.Stored {
		for _, c := range list {
			if c.ID == id {
				cc := c.Clone()
				return &cc, nil
			}
		}
	}
	return nil, nil
}

func (m *mockResultRepo) CreateCandidate(ctx context.Context, c *models.CandidateResult) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if c.ID == "" {
		m.seq++
		c.ID = fmt.Sprintf("candidate-%d", m.seq)
	}
	m.Stored[c.InterviewID] = append(m.Stored[c.InterviewID], c.Clone())
	return c.ID, nil
}

func (m *mockResultRepo) UpdateCandidate(ctx context.Context, c *models.CandidateResult) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updated = append(m.Updated, c.Clone())
	list := m.Stored[c.InterviewID]
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = c.Clone()
			return nil
		}
	}
	return fmt.Errorf("candidate %s not found", c.ID)
}

type mockInvitationRepo struct {
	Stored    []models.Invitation
	CreateErr error
	ListErr   error
	seq       int
}

func (m *mockInvitationRepo) CreateInvitation(ctx context.Context, inv *models.Invitation) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	for _, existing := range m.Stored {
		if existing.InterviewID == inv.InterviewID && existing.Email == inv.Email {
			return existing.ID, nil
		}
	}
	m.seq++
	inv.ID = fmt.Sprintf("invite-%d", m.seq)
	m.Stored = append(m.Stored, *inv)
	return inv.ID, nil
}

func (m *mockInvitationRepo) ListInvitations(ctx context.Context, interviewID string) ([]models.Invitation, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Invitation{}
	for _, inv := range m.Stored {
		if inv.InterviewID == interviewID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInvitationRepo) DeleteInvitation(ctx context.Context, id string) error {
	for i, inv := range m.Stored {
		if inv.ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return nil
}
