package workspace

import (
	"context"
	"log"

	"github.com/design-sidekick/sidekick-bot/internal/projects/domain"
)

// projectStore is the slice of the project repository the syncer needs.
type projectStore interface {
	SetNotionPage(ctx context.Context, id int64, pageID string) error
	SetSyncState(ctx context.Context, id int64, state domain.SyncState) error
	ListUnsynced(ctx context.Context) ([]domain.Project, error)
}

// Syncer mirrors project state to the workspace as an explicit, recorded
// step: the local transaction happens first, then the outbound call, and the
// outcome lands in the project's sync_state so a later pass can retry
// failures. Callers treat a failed sync as a degraded outcome, not an error.
type Syncer struct {
	client *Client
	store  projectStore
}

// NewSyncer creates a workspace syncer.
func NewSyncer(client *Client, store projectStore) *Syncer {
	return &Syncer{client: client, store: store}
}

func (s *Syncer) record(ctx context.Context, projectID int64, err error) {
	state := domain.SyncDone
	if err != nil {
		state = domain.SyncFailed
		log.Printf("[warn] operation=workspace_sync project_id=%d error=%v", projectID, err)
	}
	if rerr := s.store.SetSyncState(ctx, projectID, state); rerr != nil {
		log.Printf("[error] operation=workspace_sync_record project_id=%d error=%v", projectID, rerr)
	}
}

// SyncCreate creates the workspace page for a freshly persisted project and
// returns its URL. Returns "" and false when the page could not be created;
// the project stays in the failed sync state for the retry pass.
func (s *Syncer) SyncCreate(ctx context.Context, p *domain.Project) (string, bool) {
	pageID, pageURL, err := s.client.CreatePage(ctx, p.Name, string(p.Status), p.DescriptionOrEmpty())
	if err != nil {
		s.record(ctx, p.ID, err)
		return "", false
	}

	if err := s.store.SetNotionPage(ctx, p.ID, pageID); err != nil {
		log.Printf("[error] operation=workspace_sync_record project_id=%d error=%v", p.ID, err)
	}
	s.record(ctx, p.ID, nil)
	p.NotionPageID = &pageID
	return pageURL, true
}

// SyncStatus pushes the project's current status to its page. A project
// without a page falls back to page creation.
func (s *Syncer) SyncStatus(ctx context.Context, p *domain.Project) {
	if p.NotionPageID == nil || *p.NotionPageID == "" {
		s.SyncCreate(ctx, p)
		return
	}
	err := s.client.UpdateStatus(ctx, *p.NotionPageID, string(p.Status))
	s.record(ctx, p.ID, err)
}

// SyncFields pushes edited name/description to the project's page.
func (s *Syncer) SyncFields(ctx context.Context, p *domain.Project, name, description *string) {
	if p.NotionPageID == nil || *p.NotionPageID == "" {
		s.SyncCreate(ctx, p)
		return
	}
	err := s.client.UpdateProperties(ctx, *p.NotionPageID, name, description)
	s.record(ctx, p.ID, err)
}

// Archive archives the project's page. Used right before the project row is
// deleted, so no sync state is recorded.
func (s *Syncer) Archive(ctx context.Context, p *domain.Project) {
	if p.NotionPageID == nil || *p.NotionPageID == "" {
		return
	}
	if err := s.client.ArchivePage(ctx, *p.NotionPageID); err != nil {
		log.Printf("[warn] operation=workspace_archive project_id=%d error=%v", p.ID, err)
	}
}

// Resync retries every project whose mirror is pending or failed. Returns the
// number of projects brought back in sync. The sync state does not say which
// outbound call failed, so the full snapshot is pushed: title, description
// and status.
func (s *Syncer) Resync(ctx context.Context) int {
	projects, err := s.store.ListUnsynced(ctx)
	if err != nil {
		log.Printf("[error] operation=workspace_resync error=%v", err)
		return 0
	}

	synced := 0
	for i := range projects {
		p := &projects[i]
		if p.NotionPageID == nil || *p.NotionPageID == "" {
			if _, ok := s.SyncCreate(ctx, p); ok {
				synced++
			}
			continue
		}
		name := p.Name
		description := p.DescriptionOrEmpty()
		if err := s.client.UpdateProperties(ctx, *p.NotionPageID, &name, &description); err != nil {
			s.record(ctx, p.ID, err)
			continue
		}
		if err := s.client.UpdateStatus(ctx, *p.NotionPageID, string(p.Status)); err != nil {
			s.record(ctx, p.ID, err)
			continue
		}
		s.record(ctx, p.ID, nil)
		synced++
	}
	return synced
}
