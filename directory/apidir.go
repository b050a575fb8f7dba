package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bluesky-social/profiledir/pkg/env"
	"github.com/bluesky-social/profiledir/pkg/metrics"
	"github.com/bluesky-social/profiledir/pkg/robusthttp"
	"github.com/bluesky-social/profiledir/syntax"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var DefaultHost = "https://api.github.com"

// Response bodies larger than this are rejected as decode failures.
const maxBodyBytes = 8 << 20

var tracer = otel.Tracer("directory")

// Does HTTP requests to a remote user directory.
type APIDirectory struct {
	Client *http.Client
	// API service to make queries to. Includes schema, hostname, and port, but no trailing slash. Eg: "https://api.github.com"
	Host      string
	UserAgent string
	Logger    *slog.Logger
}

var _ Directory = (*APIDirectory)(nil)

type profileBody struct {
	Login       *string `json:"login"`
	AvatarURL   *string `json:"avatar_url"`
	HTMLURL     *string `json:"html_url"`
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	PublicRepos *int64  `json:"public_repos"`
	Followers   *int64  `json:"followers"`
	Following   *int64  `json:"following"`
}

type relationBody struct {
	Login     *string `json:"login"`
	AvatarURL *string `json:"avatar_url"`
}

type errorBody struct {
	Message string `json:"message,omitempty"`
}

func NewAPIDirectory(host string) APIDirectory {
	if host == "" {
		host = DefaultHost
	}
	return APIDirectory{
		Client:    robusthttp.NewClient(),
		Host:      strings.TrimSuffix(host, "/"),
		UserAgent: "profiledir/" + env.Short(),
		Logger:    slog.Default().With("system", "directory"),
	}
}

func UserPath(h syntax.Handle) string {
	return "/users/" + h.PathSegment()
}

func FollowersPath(h syntax.Handle) string {
	return UserPath(h) + "/followers"
}

func FollowingPath(h syntax.Handle) string {
	return UserPath(h) + "/following"
}

// Metrics label for a resource path: "user", "followers", "following" or "other".
func endpointLabel(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "users" {
		return "other"
	}
	switch {
	case len(parts) == 2:
		return "user"
	case len(parts) == 3 && (parts[2] == "followers" || parts[2] == "following"):
		return parts[2]
	}
	return "other"
}

func statusLabel(err error) string {
	switch KindOf(err) {
	case KindNone:
		return metrics.StatusOK
	case KindNotFound:
		return metrics.StatusNotFound
	case KindInvalidHandle:
		return metrics.StatusInvalid
	case KindDecode:
		return metrics.StatusDecode
	default:
		return metrics.StatusError
	}
}

func (dir *APIDirectory) logger() *slog.Logger {
	if dir.Logger != nil {
		return dir.Logger
	}
	return slog.Default()
}

// Issues a single GET request for path (relative to Host), and decodes a successful JSON response into body.
//
// body: pointer which can be `json.Unmarshal()`, or nil to discard the response body.
func (dir *APIDirectory) Fetch(ctx context.Context, path string, body any) error {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	start := time.Now()
	err := dir.fetch(ctx, path, body)
	elapsed := time.Since(start)

	endpoint := endpointLabel(path)
	status := statusLabel(err)
	directoryFetch.WithLabelValues(endpoint, status).Inc()
	directoryFetchDuration.WithLabelValues(endpoint, status).Observe(elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	dir.logger().Debug("directory fetch", "path", path, "status", status, "duration", elapsed)
	return err
}

func (dir *APIDirectory) fetch(ctx context.Context, path string, body any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dir.Host+path, nil)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("constructing HTTP request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if dir.UserAgent != "" {
		req.Header.Set("User-Agent", dir.UserAgent)
	}

	client := dir.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return &TransportError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var eb errorBody
		if err := json.Unmarshal(b, &eb); err == nil {
			statusErr.Message = eb.Message
		}
		return statusErr
	}

	if len(b) > maxBodyBytes {
		return &DecodeError{Err: fmt.Errorf("response body larger than %d bytes", maxBodyBytes)}
	}
	if body == nil {
		return nil
	}
	if err := json.Unmarshal(b, body); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// Re-validates a handle which may not have come from syntax.ParseHandle.
func checkHandle(h syntax.Handle, endpoint string) (syntax.Handle, error) {
	parsed, err := syntax.ParseHandle(h.String())
	if err != nil {
		directoryFetch.WithLabelValues(endpoint, metrics.StatusInvalid).Inc()
		return "", err
	}
	return parsed, nil
}

func (dir *APIDirectory) LookupUser(ctx context.Context, handle syntax.Handle) (*Profile, error) {
	h, err := checkHandle(handle, "user")
	if err != nil {
		return nil, err
	}

	var body profileBody
	if err := dir.Fetch(ctx, UserPath(h), &body); err != nil {
		return nil, err
	}
	return body.Profile()
}

func (dir *APIDirectory) Followers(ctx context.Context, handle syntax.Handle) ([]RelationEntry, error) {
	h, err := checkHandle(handle, "followers")
	if err != nil {
		return nil, err
	}
	return dir.fetchRelations(ctx, FollowersPath(h))
}

func (dir *APIDirectory) Following(ctx context.Context, handle syntax.Handle) ([]RelationEntry, error) {
	h, err := checkHandle(handle, "following")
	if err != nil {
		return nil, err
	}
	return dir.fetchRelations(ctx, FollowingPath(h))
}

func (dir *APIDirectory) fetchRelations(ctx context.Context, path string) ([]RelationEntry, error) {
	var body []relationBody
	if err := dir.Fetch(ctx, path, &body); err != nil {
		return nil, err
	}
	// `[]` decodes to an empty non-nil slice; only `null` leaves it nil
	if body == nil {
		return nil, &DecodeError{Err: errors.New("expected JSON array of users, got null")}
	}

	out := make([]RelationEntry, 0, len(body))
	for i, rb := range body {
		entry, err := rb.RelationEntry()
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		out = append(out, entry)
	}
	return out, nil
}

func requiredString(name string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("missing required field %q", name)
	}
	return *v, nil
}

func requiredCount(name string, v *int64) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("missing required field %q", name)
	}
	if *v < 0 {
		return 0, fmt.Errorf("field %q is negative: %d", name, *v)
	}
	return *v, nil
}

func parseLogin(v *string) (syntax.Handle, error) {
	login, err := requiredString("login", v)
	if err != nil {
		return "", err
	}
	h, err := syntax.ParseHandle(login)
	if err != nil {
		return "", fmt.Errorf("field \"login\": %s", err)
	}
	return h, nil
}

// Validates required fields and converts to a Profile. Failures are returned as *DecodeError.
func (b *profileBody) Profile() (*Profile, error) {
	p, err := b.profile()
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return p, nil
}

func (b *profileBody) profile() (*Profile, error) {
	var err error
	p := Profile{
		Name:     b.Name,
		Bio:      b.Bio,
		Location: b.Location,
	}
	if p.Handle, err = parseLogin(b.Login); err != nil {
		return nil, err
	}
	if p.AvatarURL, err = requiredString("avatar_url", b.AvatarURL); err != nil {
		return nil, err
	}
	if p.ProfileURL, err = requiredString("html_url", b.HTMLURL); err != nil {
		return nil, err
	}
	if p.PublicRepos, err = requiredCount("public_repos", b.PublicRepos); err != nil {
		return nil, err
	}
	if p.Followers, err = requiredCount("followers", b.Followers); err != nil {
		return nil, err
	}
	if p.Following, err = requiredCount("following", b.Following); err != nil {
		return nil, err
	}
	return &p, nil
}

func (b *relationBody) RelationEntry() (RelationEntry, error) {
	h, err := parseLogin(b.Login)
	if err != nil {
		return RelationEntry{}, err
	}
	avatar, err := requiredString("avatar_url", b.AvatarURL)
	if err != nil {
		return RelationEntry{}, err
	}
	return RelationEntry{Handle: h, AvatarURL: avatar}, nil
}
