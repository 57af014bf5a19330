package httpclient

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/net/publicsuffix"
)

// cookieKey identifies a jar entry. Entries are keyed by (name, domain,
// path) with last-write-wins semantics per key.
type cookieKey struct {
	name   string
	domain string
	path   string
}

// CookieJar wraps an RFC 6265 jar with a snapshot view and optional
// persistence in the Netscape cookies.txt text format. Domain/path matching
// is delegated entirely to net/http/cookiejar; this type only tracks entries
// for snapshotting and persistence.
//
// The jar is owned by one Client. File access is guarded by a sidecar file
// lock so that clients in different processes sharing a cookie file never
// interleave writes.
type CookieJar struct {
	mu      sync.Mutex
	inner   http.CookieJar
	entries map[cookieKey]*http.Cookie
	file    string
	flock   *flock.Flock
}

var _ http.CookieJar = (*CookieJar)(nil)

// newCookieJar builds a jar, loading persisted cookies from file when it is
// non-empty. An empty file path disables persistence.
func newCookieJar(file string) (*CookieJar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	j := &CookieJar{
		inner:   inner,
		entries: make(map[cookieKey]*http.Cookie),
		file:    file,
	}
	if file != "" {
		j.flock = flock.New(file + ".lock")
		if err := j.load(); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// SetCookies implements http.CookieJar. The transport calls it during each
// exchange; entries are recorded for snapshots and persistence.
func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	for _, ck := range cookies {
		c := *ck
		if c.Domain == "" {
			c.Domain = u.Hostname()
		}
		if c.Path == "" {
			c.Path = "/"
		}
		key := cookieKey{name: c.Name, domain: c.Domain, path: c.Path}
		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now))
		if expired {
			delete(j.entries, key)
			continue
		}
		j.entries[key] = &c
	}
}

// Cookies implements http.CookieJar.
func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Snapshot returns a name → value view of the jar at call time.
func (j *CookieJar) Snapshot() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := make(map[string]string, len(j.entries))
	for _, c := range j.entries {
		snap[c.Name] = c.Value
	}
	return snap
}

// persist writes the jar to the configured file. It is a no-op without a
// cookie file. The write goes through a temp file and rename under the file
// lock.
func (j *CookieJar) persist() error {
	if j.file == "" {
		return nil
	}

	if err := j.flock.Lock(); err != nil {
		return fmt.Errorf("httpclient: locking cookie file: %w", err)
	}
	defer j.flock.Unlock()

	j.mu.Lock()
	lines := j.encodeEntries()
	j.mu.Unlock()

	tmp := j.file + ".tmp"
	if err := os.WriteFile(tmp, []byte(lines), 0o600); err != nil {
		return fmt.Errorf("httpclient: writing cookie file: %w", err)
	}
	if err := os.Rename(tmp, j.file); err != nil {
		return fmt.Errorf("httpclient: writing cookie file: %w", err)
	}
	return nil
}

// load reads persisted cookies. A missing or empty file is not an error.
func (j *CookieJar) load() error {
	if err := j.flock.Lock(); err != nil {
		return fmt.Errorf("httpclient: locking cookie file: %w", err)
	}
	defer j.flock.Unlock()

	f, err := os.Open(j.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("httpclient: reading cookie file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ck, u, ok := parseCookieLine(line)
		if !ok {
			continue
		}
		j.SetCookies(u, []*http.Cookie{ck})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("httpclient: reading cookie file: %w", err)
	}
	return nil
}

// encodeEntries renders the jar in Netscape cookies.txt format, one line per
// entry, sorted for stable output. Caller holds j.mu.
func (j *CookieJar) encodeEntries() string {
	keys := make([]cookieKey, 0, len(j.entries))
	for k := range j.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].domain != keys[b].domain {
			return keys[a].domain < keys[b].domain
		}
		if keys[a].path != keys[b].path {
			return keys[a].path < keys[b].path
		}
		return keys[a].name < keys[b].name
	})

	var sb strings.Builder
	sb.WriteString("# Netscape HTTP Cookie File\n")
	sb.WriteString("# Generated by courier. Edits will be overwritten.\n\n")
	for _, k := range keys {
		c := j.entries[k]
		includeSubdomains := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSubdomains = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		var expires int64
		if !c.Expires.IsZero() {
			expires = c.Expires.Unix()
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, includeSubdomains, c.Path, secure, expires, c.Name, c.Value)
	}
	return sb.String()
}

// parseCookieLine decodes one Netscape cookies.txt line into a cookie and
// the URL to register it under.
func parseCookieLine(line string) (*http.Cookie, *url.URL, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return nil, nil, false
	}

	domain, path, name, value := fields[0], fields[2], fields[5], fields[6]
	secure := fields[3] == "TRUE"

	ck := &http.Cookie{
		Name:   name,
		Value:  value,
		Domain: strings.TrimPrefix(domain, "."),
		Path:   path,
		Secure: secure,
	}
	if unix, err := strconv.ParseInt(fields[4], 10, 64); err == nil && unix > 0 {
		ck.Expires = time.Unix(unix, 0)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: strings.TrimPrefix(domain, "."), Path: path}
	return ck, u, true
}
