package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/notify"
	"github.com/labtrack/labtrack/internal/progress"
	"github.com/labtrack/labtrack/internal/roster"
)

// MaxFileBytes is the per-file upload limit.
const MaxFileBytes = 50 * 1024 * 1024

// Upload describes one incoming file. Content may be nil when only metadata
// is recorded; when present its bytes are encoded into the opaque payload
// before the attachment is inserted.
type Upload struct {
	Name      string
	SizeBytes int64
	Content   io.Reader
}

// Encoder turns raw file bytes into the transportable payload stored on the
// attachment. The read may suspend; the insert waits for it to finish.
type Encoder interface {
	Encode(ctx context.Context, r io.Reader) (string, error)
}

// Base64Encoder is the stock encoder.
type Base64Encoder struct{}

func (Base64Encoder) Encode(_ context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Manager validates, encodes and indexes uploads against the record store.
type Manager struct {
	store    *progress.Store
	encoder  Encoder
	notifier notify.Notifier
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithEncoder replaces the payload encoder.
func WithEncoder(enc Encoder) Option {
	return func(m *Manager) { m.encoder = enc }
}

// NewManager creates an attachment manager over the record store.
func NewManager(store *progress.Store, notifier notify.Notifier, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		encoder:  Base64Encoder{},
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach validates one upload and inserts it into both file indexes of the
// target member and month. Oversized files are rejected before anything is
// read or inserted.
func (m *Manager) Attach(ctx context.Context, memberID, monthID string, up Upload) (*roster.FileAttachment, error) {
	if up.SizeBytes > MaxFileBytes {
		m.notifier.Notify(fmt.Sprintf("File %s exceeds the 50 MB limit", up.Name), notify.LevelError)
		return nil, ErrFileTooLarge
	}

	payload := ""
	if up.Content != nil {
		encoded, err := m.encoder.Encode(ctx, up.Content)
		if err != nil {
			m.notifier.Notify(fmt.Sprintf("Could not read file %s", up.Name), notify.LevelError)
			return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
		payload = encoded
	}

	now := m.now()
	file := roster.FileAttachment{
		ID:         newFileID(now),
		Name:       up.Name,
		Size:       FormatFileSize(up.SizeBytes),
		Type:       FileType(up.Name),
		UploadDate: now,
		Month:      monthID,
		Data:       payload,
	}

	if err := m.store.AttachFile(memberID, monthID, file); err != nil {
		return nil, err
	}
	return &file, nil
}

// AttachBatch attaches a batch of uploads. Rejection is per-file, never
// batch-fatal: an oversized or unreadable file is reported and skipped while
// the rest proceed. Only an unknown member or month aborts the batch.
func (m *Manager) AttachBatch(ctx context.Context, memberID, monthID string, uploads []Upload) ([]roster.FileAttachment, error) {
	attached := make([]roster.FileAttachment, 0, len(uploads))
	for _, up := range uploads {
		file, err := m.Attach(ctx, memberID, monthID, up)
		if err != nil {
			if errors.Is(err, progress.ErrMemberNotFound) || errors.Is(err, progress.ErrMonthNotFound) {
				return attached, err
			}
			continue
		}
		attached = append(attached, *file)
	}
	return attached, nil
}

// Detach removes a file from the member's flat list and from every month
// that references it. Unknown file ids are a no-op.
func (m *Manager) Detach(memberID, fileID string) error {
	return m.store.DetachFile(memberID, fileID)
}

func newFileID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("file_%d_%s", now.UnixMilli(), suffix)
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with base-1024 units and at most two
// decimal places ("1.5 MB", "0 Bytes").
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	exp := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if exp >= len(sizeUnits) {
		exp = len(sizeUnits) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(exp))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[exp]
}

var typeByExtension = map[string]string{
	"pdf":  "pdf",
	"doc":  "word",
	"docx": "word",
	"txt":  "alt",
	"ppt":  "powerpoint",
	"pptx": "powerpoint",
	"xls":  "excel",
	"xlsx": "excel",
	"jpg":  "image",
	"jpeg": "image",
	"png":  "image",
	"gif":  "image",
	"zip":  "archive",
	"rar":  "archive",
	"7z":   "archive",
}

// FileType maps a filename extension to its display type tag. Unmapped
// extensions get the generic "file" tag.
func FileType(filename string) string {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 || dot == len(filename)-1 {
		return "file"
	}
	if tag, ok := typeByExtension[strings.ToLower(filename[dot+1:])]; ok {
		return tag
	}
	return "file"
}
