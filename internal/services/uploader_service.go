package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teledrop/syncd/internal/models"
	"github.com/teledrop/syncd/internal/observability"
	"github.com/teledrop/syncd/internal/repository"
	"github.com/teledrop/syncd/internal/telegram"
)

// RearmScheduler is the slice of the scheduler the uploader needs:
// after an auto-sync run drains, the content watch is re-armed so the
// next burst of new files triggers again.
type RearmScheduler interface {
	RearmContentWatch()
}

// RunRequest describes one sync run. Exactly one of Locators or
// SpoolFile carries a manual selection; AutoSync runs resolve their
// items from the enabled folder catalog instead.
type RunRequest struct {
	Locators  []string
	SpoolFile string
	AutoSync  bool
}

// UploaderService drives a sync run end to end: resolve candidate
// items, skip already-transferred content, route each survivor to the
// messaging endpoint by size class, and append successful transfers to
// the dedup ledger.
type UploaderService struct {
	settings   *SettingsService
	library    *MediaLibrary
	uploadRepo repository.UploadRecordRepo
	folderRepo repository.SyncFolderRepo
	hasher     *HashService
	captions   *CaptionService
	transports telegram.Factory
	hub        *WebSocketHub
	metrics    *observability.SyncMetrics

	tempDir        string
	spoolThreshold int

	mu          sync.Mutex
	scheduler   RearmScheduler
	activeRuns  int
	lastOutcome *models.RunOutcome
}

// NewUploaderService creates the run orchestrator
func NewUploaderService(
	settings *SettingsService,
	library *MediaLibrary,
	uploadRepo repository.UploadRecordRepo,
	folderRepo repository.SyncFolderRepo,
	hasher *HashService,
	captions *CaptionService,
	transports telegram.Factory,
	hub *WebSocketHub,
	metrics *observability.SyncMetrics,
	tempDir string,
	spoolThreshold int,
) *UploaderService {
	if spoolThreshold <= 0 {
		spoolThreshold = 200
	}
	return &UploaderService{
		settings:       settings,
		library:        library,
		uploadRepo:     uploadRepo,
		folderRepo:     folderRepo,
		hasher:         hasher,
		captions:       captions,
		transports:     transports,
		hub:            hub,
		metrics:        metrics,
		tempDir:        tempDir,
		spoolThreshold: spoolThreshold,
	}
}

// SetScheduler wires the content-watch re-arm hook. Called once at
// startup, after both services exist.
func (s *UploaderService) SetScheduler(sched RearmScheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler = sched
}

// Running reports whether at least one run is in flight
func (s *UploaderService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRuns > 0
}

// LastOutcome returns the most recent terminal outcome, if any
func (s *UploaderService) LastOutcome() *models.RunOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastOutcome == nil {
		return nil
	}
	out := *s.lastOutcome
	return &out
}

// SpoolLocators prepares a RunRequest for a manual selection. Small
// selections travel inline; larger ones are written to a spool file in
// the temp dir so trigger payloads stay bounded. The spool file is
// consumed (and removed) by Run.
func (s *UploaderService) SpoolLocators(locators []string) (RunRequest, error) {
	if len(locators) <= s.spoolThreshold {
		return RunRequest{Locators: locators}, nil
	}

	f, err := os.CreateTemp(s.tempDir, "spool-*.txt")
	if err != nil {
		return RunRequest{}, fmt.Errorf("create spool file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, loc := range locators {
		if _, err := w.WriteString(loc + "\n"); err != nil {
			os.Remove(f.Name())
			return RunRequest{}, fmt.Errorf("write spool file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		os.Remove(f.Name())
		return RunRequest{}, fmt.Errorf("flush spool file: %w", err)
	}

	return RunRequest{SpoolFile: f.Name()}, nil
}

// Run executes one sync run. Per-item failures are absorbed as skips;
// only run-level failures (missing credentials, unreadable spool file)
// return an error.
func (s *UploaderService) Run(ctx context.Context, req RunRequest) (*models.RunOutcome, error) {
	runID := uuid.New().String()
	startedAt := time.Now()

	s.mu.Lock()
	s.activeRuns++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.activeRuns--
		s.mu.Unlock()
	}()

	// Spool files are single-use regardless of how the run ends
	if req.SpoolFile != "" {
		defer os.Remove(req.SpoolFile)
	}

	settings := s.settings.Get()
	if !settings.Configured() {
		s.failRun(runID, "not configured")
		return nil, models.ErrNotConfigured
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(settings.ChatID), 10, 64)
	if err != nil {
		s.failRun(runID, "invalid chat id")
		return nil, fmt.Errorf("parse chat id %q: %w", settings.ChatID, err)
	}

	transport, err := s.transports(settings.BotToken)
	if err != nil {
		s.failRun(runID, "transport unavailable")
		return nil, err
	}

	notifyProgress(s.hub, models.RunProgress{RunID: runID, Phase: models.PhaseResolving})

	items, folders, err := s.resolveItems(ctx, req)
	if err != nil {
		s.failRun(runID, err.Error())
		return nil, err
	}

	log.Printf("Sync run %s: %d candidate item(s)", runID, len(items))

	uploaded, skipped := 0, 0
	for i, item := range items {
		if ctx.Err() != nil {
			log.Printf("Sync run %s canceled after %d/%d items", runID, i, len(items))
			break
		}

		ok := s.processItem(ctx, transport, chatID, runID, i, len(items), item)
		if ok {
			uploaded++
		} else {
			skipped++
		}
	}

	// Folder timestamps reflect the sweep, not individual successes
	now := time.Now()
	for _, folder := range folders {
		if err := s.folderRepo.TouchLastSync(ctx, folder.Path, now); err != nil {
			log.Printf("Failed to touch last sync for %s: %v", folder.Path, err)
		}
	}

	if req.AutoSync {
		s.mu.Lock()
		sched := s.scheduler
		s.mu.Unlock()
		if sched != nil {
			sched.RearmContentWatch()
		}
	}

	outcome := models.RunOutcome{
		RunID:         runID,
		UploadedCount: uploaded,
		SkippedCount:  skipped,
		TotalCount:    len(items),
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	}

	s.mu.Lock()
	s.lastOutcome = &outcome
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordRun(ctx, req.AutoSync, outcome.FinishedAt.Sub(outcome.StartedAt))
	}

	notifyProgress(s.hub, models.RunProgress{
		RunID:      runID,
		Phase:      models.PhaseCompleted,
		TotalCount: len(items),
	})
	notifyComplete(s.hub, outcome)

	log.Printf("Sync run %s completed: %d uploaded, %d skipped of %d",
		runID, uploaded, skipped, len(items))

	return &outcome, nil
}

// resolveItems turns a RunRequest into the concrete item list, and the
// folders whose last-sync timestamps should be touched afterwards.
func (s *UploaderService) resolveItems(ctx context.Context, req RunRequest) ([]*models.MediaItem, []*models.SyncFolder, error) {
	locators := req.Locators

	if req.SpoolFile != "" {
		spooled, err := readSpool(req.SpoolFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read spool file: %w", err)
		}
		locators = append(locators, spooled...)
	}

	if !req.AutoSync {
		items := make([]*models.MediaItem, 0, len(locators))
		for _, loc := range locators {
			if strings.TrimSpace(loc) == "" {
				continue
			}
			item, err := s.library.ResolveItem(loc)
			if err != nil {
				log.Printf("Skipping unresolvable locator %s: %v", loc, err)
				continue
			}
			items = append(items, item)
		}
		return items, nil, nil
	}

	folders, err := s.folderRepo.GetAutoSync(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load auto-sync folders: %w", err)
	}

	var items []*models.MediaItem
	for _, folder := range folders {
		folderItems, err := s.library.ListMediaInFolder(ctx, folder.Path)
		if err != nil {
			log.Printf("Skipping unreadable folder %s: %v", folder.Path, err)
			continue
		}
		items = append(items, folderItems...)
	}

	return items, folders, nil
}

// processItem handles one candidate: dedup check, size routing, upload,
// ledger append. Returns true when the item was uploaded and recorded
// (or uploaded with a failed ledger write, which still counts as sent).
func (s *UploaderService) processItem(
	ctx context.Context,
	transport telegram.Transport,
	chatID int64,
	runID string,
	index, total int,
	item *models.MediaItem,
) bool {
	progress := models.RunProgress{
		RunID:              runID,
		CurrentIndex:       index,
		TotalCount:         total,
		CurrentFileName:    item.Name,
		CurrentFileLocator: item.Locator,
	}

	progress.Phase = models.PhaseChecking
	notifyProgress(s.hub, progress)

	// Checksum is best-effort: an unreadable file still gets the other
	// two dedup signals before it fails at upload time
	checksum, err := s.hasher.ComputeFileChecksum(item.Locator)
	if err != nil {
		log.Printf("Checksum failed for %s: %v", item.Locator, err)
		checksum = ""
	}

	if item.Size <= 0 {
		log.Printf("Skipping %s: invalid file size %d", item.Name, item.Size)
		return s.skipItem(progress, models.SkipFailed)
	}

	dup, err := s.isDuplicate(ctx, item, checksum)
	if err != nil {
		log.Printf("Dedup check failed for %s: %v", item.Locator, err)
		return s.skipItem(progress, models.SkipFailed)
	}
	if dup {
		return s.skipItem(progress, models.SkipDuplicate)
	}

	class := ClassifySize(item.Kind, item.Size)
	if class.Verdict == VerdictTooLarge {
		log.Printf("Skipping %s: %d bytes exceeds %d limit", item.Name, item.Size, class.MaxAllowed)
		return s.skipItem(progress, models.SkipTooLarge)
	}

	// Snapshot the file so an in-place edit mid-upload cannot corrupt
	// the transfer
	staged, err := s.stage(item)
	if err != nil {
		log.Printf("Staging failed for %s: %v", item.Locator, err)
		return s.skipItem(progress, models.SkipFailed)
	}
	defer os.Remove(staged)

	caption := s.captions.BuildCaption(item.Locator, item)

	if err := s.send(ctx, transport, chatID, runID, index, total, item, staged, class, caption); err != nil {
		log.Printf("Upload failed for %s: %v", item.Name, err)
		return s.skipItem(progress, models.SkipFailed)
	}

	record, err := models.NewUploadRecord(item.ID, item.Locator, checksum, item.Size)
	if err == nil {
		err = s.uploadRepo.Record(ctx, record)
	}
	if err != nil {
		// The file was delivered; a ledger miss means it may be re-sent
		// next run, which is preferable to claiming a failure
		log.Printf("Ledger write failed for %s: %v", item.Locator, err)
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(ctx, string(item.Kind), item.Size)
	}

	progress.Phase = models.PhaseRecorded
	progress.UploadPercent = 100
	progress.UploadedBytes = item.Size
	progress.TotalBytes = item.Size
	notifyProgress(s.hub, progress)

	return true
}

func (s *UploaderService) isDuplicate(ctx context.Context, item *models.MediaItem, checksum string) (bool, error) {
	if item.ID != 0 {
		exists, err := s.uploadRepo.ExistsByMediaID(ctx, item.ID)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}

	exists, err := s.uploadRepo.ExistsByLocator(ctx, item.Locator)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	if checksum != "" {
		exists, err = s.uploadRepo.ExistsByChecksum(ctx, checksum)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}

	return false, nil
}

// stage copies the source file into the temp dir and returns the copy's
// path. Caller removes it.
func (s *UploaderService) stage(item *models.MediaItem) (string, error) {
	src, err := os.Open(item.Locator)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.tempDir, "upload-*"+filepath.Ext(item.Name))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func (s *UploaderService) send(
	ctx context.Context,
	transport telegram.Transport,
	chatID int64,
	runID string,
	index, total int,
	item *models.MediaItem,
	stagedPath string,
	class SizeClassification,
	caption string,
) error {
	f, err := os.Open(stagedPath)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := NewProgressReader(f, item.Size, func(tp TransferProgress) {
		notifyProgress(s.hub, models.RunProgress{
			RunID:              runID,
			Phase:              models.PhaseUploading,
			CurrentIndex:       index,
			TotalCount:         total,
			CurrentFileName:    item.Name,
			CurrentFileLocator: item.Locator,
			UploadPercent:      tp.Percent,
			UploadedBytes:      tp.UploadedBytes,
			TotalBytes:         tp.TotalBytes,
			SpeedBytesPerSec:   tp.SpeedBps,
			ETASeconds:         tp.ETASeconds,
		})
	})

	upload := telegram.FileUpload{
		Name:   item.Name,
		Size:   item.Size,
		Reader: reader,
	}

	switch {
	case class.Verdict == VerdictSendAsDocument:
		return transport.SendDocument(ctx, chatID, upload, caption)
	case item.Kind == models.KindVideo:
		return transport.SendVideo(ctx, chatID, upload, caption)
	default:
		return transport.SendPhoto(ctx, chatID, upload, caption)
	}
}

func (s *UploaderService) skipItem(progress models.RunProgress, reason models.SkipReason) bool {
	progress.Phase = models.PhaseSkipped
	progress.SkipReason = reason
	notifyProgress(s.hub, progress)
	if s.metrics != nil {
		s.metrics.RecordSkip(context.Background(), string(reason))
	}
	return false
}

func (s *UploaderService) failRun(runID, reason string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToTopic(TopicSync, WSMessage{
		Type:    WSTypeSyncFailed,
		Payload: SyncFailedPayload{RunID: runID, Reason: reason},
	})
}

func readSpool(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var locators []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			locators = append(locators, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return locators, nil
}
