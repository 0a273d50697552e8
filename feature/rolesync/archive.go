package rolesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"rank-sync/core/reconcile"
	"rank-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ReportPrefix is the object prefix reports are stored under.
const ReportPrefix = "sync-reports"

// ErrReportNotFound means no report exists for the pass.
var ErrReportNotFound = errors.New("report not found")

// MemberReport is one member's outcome as archived.
type MemberReport struct {
	reconcile.Outcome
	Errors []string `json:"errors,omitempty"`
}

// Report is the archived result of a full guild pass.
type Report struct {
	Stats   reconcile.Stats `json:"stats"`
	Error   string          `json:"error,omitempty"`
	Members []MemberReport  `json:"members"`
}

// ReportInfo describes a stored report.
type ReportInfo struct {
	PassID       string    `json:"pass_id"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive writes full-pass reports to object storage. It collects member
// outcomes as a reconcile.OutcomeObserver, keyed by pass id.
type Archive struct {
	client storage.Client
	bucket string

	mu      sync.Mutex
	pending map[string][]MemberReport
}

// NewArchive creates a new Archive.
func NewArchive(client storage.Client, bucket string) *Archive {
	return &Archive{
		client:  client,
		bucket:  bucket,
		pending: make(map[string][]MemberReport),
	}
}

// ReportKey returns the object key of a pass report.
func ReportKey(guildID, passID string) string {
	return path.Join(ReportPrefix, guildID, passID+".json")
}

// MemberReconciled buffers outcomes of guild passes. Single-member passes are ignored.
func (a *Archive) MemberReconciled(ctx context.Context, _ string, _ reconcile.Trigger, outcome reconcile.Outcome) error {
	passID, ok := reconcile.PassID(ctx)
	if !ok {
		return nil
	}

	entry := MemberReport{Outcome: outcome}
	for _, f := range outcome.Failures {
		entry.Errors = append(entry.Errors, f.Error())
	}

	a.mu.Lock()
	a.pending[passID] = append(a.pending[passID], entry)
	a.mu.Unlock()
	return nil
}

// Store writes the report of a finished pass and drops its buffered outcomes.
func (a *Archive) Store(ctx context.Context, stats reconcile.Stats, passErr error) (string, error) {
	members := a.take(stats.PassID)
	sort.Slice(members, func(i, j int) bool { return members[i].MemberID < members[j].MemberID })
	if members == nil {
		members = []MemberReport{}
	}

	report := Report{Stats: stats, Members: members}
	if passErr != nil {
		report.Error = passErr.Error()
	}

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := ReportKey(stats.GuildID, stats.PassID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return key, nil
}

// Discard drops the buffered outcomes of a pass without writing a report.
func (a *Archive) Discard(passID string) {
	a.take(passID)
}

// List returns the stored reports of a guild, newest first.
func (a *Archive) List(ctx context.Context, guildID string) ([]ReportInfo, error) {
	prefix := path.Join(ReportPrefix, guildID) + "/"
	reports := []ReportInfo{}
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		reports = append(reports, ReportInfo{
			PassID:       strings.TrimSuffix(path.Base(obj.Key), ".json"),
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].LastModified.After(reports[j].LastModified) })
	return reports, nil
}

// Get reads one stored report.
func (a *Archive) Get(ctx context.Context, guildID, passID string) (*Report, error) {
	key := ReportKey(guildID, passID)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(key, err)
	}
	defer obj.Close()

	var report Report
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		return nil, mapObjectError(key, err)
	}
	return &report, nil
}

func (a *Archive) take(passID string) []MemberReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	members := a.pending[passID]
	delete(a.pending, passID)
	return members
}

func mapObjectError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, ErrReportNotFound)
	}
	return fmt.Errorf("failed to read report %s: %w", key, err)
}
