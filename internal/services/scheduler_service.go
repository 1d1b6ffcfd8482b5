package services

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/teledrop/syncd/internal/models"
	"github.com/teledrop/syncd/internal/repository"
)

// Named work slots. Manual runs may overlap each other; the other
// slots hold at most one registration at a time.
const (
	SlotManual          = "sync_work"
	SlotPeriodic        = "scheduled_backup"
	SlotContentWatch    = "content_observer_backup"
	SlotStartupObserver = "auto_sync_observer"
)

// A file that fires the content watch may still be mid-copy. The watch
// holds the trigger until the file's size stays unchanged across one
// settle interval, so a truncated snapshot is never swept up.
const (
	defaultSettleInterval = 2 * time.Second
	defaultSettleTimeout  = 2 * time.Minute
)

// NetworkChecker reports connectivity for run gating. The daemon
// default assumes a wired host; deployments behind tethered links can
// plug in a real checker.
type NetworkChecker interface {
	Online() bool
	Metered() bool
}

// AlwaysOnlineNetwork is the default NetworkChecker for hosts with a
// permanent unmetered connection.
type AlwaysOnlineNetwork struct{}

func (AlwaysOnlineNetwork) Online() bool  { return true }
func (AlwaysOnlineNetwork) Metered() bool { return false }

// SchedulerStatus is the introspection snapshot for the status endpoint
type SchedulerStatus struct {
	Running           bool       `json:"running"`
	PeriodicActive    bool       `json:"periodicActive"`
	PeriodicInterval  string     `json:"periodicInterval,omitempty"`
	NextPeriodicAt    *time.Time `json:"nextPeriodicAt,omitempty"`
	ContentWatchArmed bool       `json:"contentWatchArmed"`
	ContentWatchSlot  string     `json:"contentWatchSlot,omitempty"`
}

// SchedulerService owns the named work slots that trigger sync runs:
// manual triggers, the periodic backup timer, and the filesystem
// content watch over auto-sync folders. Settings changes re-register
// the non-manual slots with replace semantics, so a toggle never
// leaves two registrations behind.
type SchedulerService struct {
	uploader   *UploaderService
	settings   *SettingsService
	folderRepo repository.SyncFolderRepo
	network    NetworkChecker

	group singleflight.Group

	mu               sync.Mutex
	started          bool
	periodicStop     chan struct{}
	periodicInterval time.Duration
	nextPeriodicAt   time.Time
	watcher          *fsnotify.Watcher
	watchStop        chan struct{}
	watchSlot        string

	// settle tuning, overridable in tests
	settleInterval time.Duration
	settleTimeout  time.Duration
}

// NewSchedulerService creates the scheduler. A nil network defaults to
// AlwaysOnlineNetwork.
func NewSchedulerService(
	uploader *UploaderService,
	settings *SettingsService,
	folderRepo repository.SyncFolderRepo,
	network NetworkChecker,
) *SchedulerService {
	if network == nil {
		network = AlwaysOnlineNetwork{}
	}
	s := &SchedulerService{
		uploader:       uploader,
		settings:       settings,
		folderRepo:     folderRepo,
		network:        network,
		settleInterval: defaultSettleInterval,
		settleTimeout:  defaultSettleTimeout,
	}
	uploader.SetScheduler(s)
	return s
}

// Start applies the persisted settings, subscribes to future changes,
// and registers the startup observer: if the content watch is not
// already armed and auto-sync folders exist, arm it without replacing
// anything that is.
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.settings.Subscribe(func(st models.Settings) {
		s.ApplySettings(st)
	})

	s.ApplySettings(s.settings.Get())

	// Startup observer keeps an existing watch rather than replacing it
	s.mu.Lock()
	armed := s.watcher != nil
	s.mu.Unlock()
	if !armed && s.settings.IsConfigured() {
		folders, err := s.folderRepo.GetAutoSync(context.Background())
		if err != nil {
			log.Printf("Startup observer: load auto-sync folders: %v", err)
		} else if len(folders) > 0 {
			s.armContentWatch(SlotStartupObserver)
		}
	}

	log.Println("Scheduler started")
}

// Stop tears down the periodic timer and the content watch
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPeriodicLocked()
	s.disarmWatchLocked()
	s.started = false
	log.Println("Scheduler stopped")
}

// ApplySettings re-registers the non-manual slots for the given
// settings. Both slots are cancelled first; exactly one (or neither)
// is registered afterwards, so repeated toggles converge to a single
// registration.
func (s *SchedulerService) ApplySettings(st models.Settings) {
	s.mu.Lock()
	s.stopPeriodicLocked()
	s.disarmWatchLocked()
	s.mu.Unlock()

	if !st.Configured() {
		return
	}

	switch {
	case st.BackupInterval.Periodic():
		s.startPeriodic(st.BackupInterval.Duration())
	case st.BackupInterval == models.IntervalWhenAdded:
		s.armContentWatch(SlotContentWatch)
	}
}

// TriggerManual launches a manual run asynchronously. Each call gets a
// unique flight key, so concurrent manual runs are allowed to overlap.
func (s *SchedulerService) TriggerManual(req RunRequest) string {
	key := SlotManual + ":" + uuid.New().String()
	go s.runSlot(SlotManual, key, req)
	return SlotManual
}

// TriggerAutoSync launches an auto-sync run under the content-watch
// slot key, coalescing concurrent duplicates.
func (s *SchedulerService) TriggerAutoSync() {
	go s.runSlot(SlotContentWatch, SlotContentWatch, RunRequest{AutoSync: true})
}

// RearmContentWatch re-arms the filesystem watch after an auto-sync
// run drains, if the watch's slot is still wanted under the current
// settings.
func (s *SchedulerService) RearmContentWatch() {
	s.mu.Lock()
	armed := s.watcher != nil
	s.mu.Unlock()
	if armed {
		return
	}

	st := s.settings.Get()
	if !st.Configured() {
		return
	}
	if st.BackupInterval == models.IntervalWhenAdded {
		s.armContentWatch(SlotContentWatch)
		return
	}

	// The startup observer slot stays alive across runs as long as
	// auto-sync folders remain
	folders, err := s.folderRepo.GetAutoSync(context.Background())
	if err == nil && len(folders) > 0 {
		s.armContentWatch(SlotStartupObserver)
	}
}

// Status reports the current slot registrations
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		Running:           s.uploader.Running(),
		PeriodicActive:    s.periodicStop != nil,
		ContentWatchArmed: s.watcher != nil,
		ContentWatchSlot:  s.watchSlot,
	}
	if s.periodicStop != nil {
		status.PeriodicInterval = s.periodicInterval.String()
		next := s.nextPeriodicAt
		status.NextPeriodicAt = &next
	}
	return status
}

func (s *SchedulerService) startPeriodic(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPeriodicLocked()

	stop := make(chan struct{})
	s.periodicStop = stop
	s.periodicInterval = interval
	s.nextPeriodicAt = time.Now().Add(interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.nextPeriodicAt = time.Now().Add(interval)
				s.mu.Unlock()
				s.runSlot(SlotPeriodic, SlotPeriodic, RunRequest{AutoSync: true})
			case <-stop:
				return
			}
		}
	}()

	log.Printf("Periodic backup registered: every %s", interval)
}

func (s *SchedulerService) stopPeriodicLocked() {
	if s.periodicStop != nil {
		close(s.periodicStop)
		s.periodicStop = nil
	}
}

// armContentWatch arms a one-shot filesystem watch over the auto-sync
// folders. The first media file created or written disarms the watch
// and triggers an auto-sync run; the run re-arms it on completion.
func (s *SchedulerService) armContentWatch(slot string) {
	folders, err := s.folderRepo.GetAutoSync(context.Background())
	if err != nil {
		log.Printf("Content watch: load auto-sync folders: %v", err)
		return
	}
	if len(folders) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Content watch: create watcher: %v", err)
		return
	}

	watched := 0
	for _, folder := range folders {
		if err := watcher.Add(folder.Path); err != nil {
			log.Printf("Content watch: cannot watch %s: %v", folder.Path, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		watcher.Close()
		return
	}

	stop := make(chan struct{})

	s.mu.Lock()
	s.disarmWatchLocked()
	s.watcher = watcher
	s.watchStop = stop
	s.watchSlot = slot
	s.mu.Unlock()

	go s.watchLoop(watcher, stop)

	log.Printf("Content watch armed (%s): %d folder(s)", slot, watched)
}

func (s *SchedulerService) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if _, isMedia := models.KindForPath(event.Name); !isMedia {
				continue
			}

			log.Printf("Content watch fired: %s", event.Name)

			// Hold the trigger until the file stops growing; the event
			// arrives on the first written byte, not the last
			if !s.waitForSettle(event.Name, stop) {
				return
			}

			s.mu.Lock()
			if s.watcher == watcher {
				s.disarmWatchLocked()
			}
			s.mu.Unlock()

			s.TriggerAutoSync()
			return

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Content watch error: %v", err)

		case <-stop:
			return
		}
	}
}

// waitForSettle blocks until the file's size holds steady across one
// settle interval. Returns false when the watch is torn down while
// waiting. A stat failure or the timeout lets the trigger proceed; the
// run resolves the file again and handles whatever it finds.
func (s *SchedulerService) waitForSettle(path string, stop chan struct{}) bool {
	deadline := time.NewTimer(s.settleTimeout)
	defer deadline.Stop()

	lastSize := int64(-1)
	for {
		select {
		case <-stop:
			return false
		case <-deadline.C:
			log.Printf("Content watch: %s never settled, proceeding", path)
			return true
		case <-time.After(s.settleInterval):
		}

		info, err := os.Stat(path)
		if err != nil {
			return true
		}
		if info.Size() == lastSize {
			return true
		}
		lastSize = info.Size()
	}
}

func (s *SchedulerService) disarmWatchLocked() {
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.watchStop != nil {
		close(s.watchStop)
		s.watchStop = nil
	}
	s.watchSlot = ""
}

// runSlot executes one run under a singleflight key. Identical keys in
// flight coalesce; manual runs pass unique keys to opt out.
func (s *SchedulerService) runSlot(slot, key string, req RunRequest) {
	if !s.network.Online() {
		log.Printf("Slot %s deferred: offline", slot)
		return
	}
	if slot != SlotManual && s.settings.Get().WiFiOnly && s.network.Metered() {
		log.Printf("Slot %s deferred: metered connection with wifi-only set", slot)
		return
	}

	_, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.uploader.Run(context.Background(), req)
	})
	if err != nil {
		log.Printf("Slot %s run failed: %v", slot, err)
	}
}
