package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/gotodo/todokit/pkg/kv"
	"github.com/gotodo/todokit/pkg/logger"
)

// cookieKey is the storage key of the persisted cookies.
const cookieKey = "auth_cookies"

type storedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// persistentJar is an in-memory cookie jar mirrored into kv storage, so the
// refresh cookie survives between CLI runs.
type persistentJar struct {
	mu    sync.Mutex
	jar   *cookiejar.Jar
	store kv.Storage
	log   *slog.Logger
	now   func() time.Time
}

func newPersistentJar(store kv.Storage, log *slog.Logger) (*persistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &persistentJar{jar: jar, store: store, log: logger.OrDiscard(log), now: time.Now}

	for _, sc := range j.read() {
		u, err := url.Parse(sc.URL)
		if err != nil || j.expired(sc) {
			continue
		}
		j.jar.SetCookies(u, []*http.Cookie{sc.cookie()})
	}
	return j, nil
}

func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	saved := j.read()
	for _, c := range cookies {
		sc := storedCookie{
			URL:      u.Scheme + "://" + u.Host + "/",
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			sc.Expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		id := sc.URL + "|" + sc.Domain + "|" + sc.Path + "|" + sc.Name
		if c.MaxAge < 0 || c.Value == "" || j.expired(sc) {
			delete(saved, id)
			continue
		}
		saved[id] = sc
	}
	j.write(saved)
}

// Reset forgets every cookie, in memory and in storage.
func (j *persistentJar) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.jar = jar
	return j.store.Delete(cookieKey)
}

func (j *persistentJar) expired(sc storedCookie) bool {
	return !sc.Expires.IsZero() && !sc.Expires.After(j.now())
}

func (j *persistentJar) read() map[string]storedCookie {
	saved := make(map[string]storedCookie)
	raw, ok, err := j.store.Get(cookieKey)
	if err != nil {
		j.log.Warn("failed to read cookies", logger.Error(err))
		return saved
	}
	if !ok {
		return saved
	}
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		j.log.Warn("discarding malformed cookies", logger.Error(err))
		return make(map[string]storedCookie)
	}
	return saved
}

func (j *persistentJar) write(saved map[string]storedCookie) {
	var err error
	if len(saved) == 0 {
		err = j.store.Delete(cookieKey)
	} else {
		var raw []byte
		if raw, err = json.Marshal(saved); err == nil {
			err = kv.Set(j.store, cookieKey, string(raw))
		}
	}
	if err != nil {
		j.log.Warn("failed to persist cookies", logger.Error(err))
	}
}

func (sc storedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     sc.Name,
		Value:    sc.Value,
		Path:     sc.Path,
		Domain:   sc.Domain,
		Expires:  sc.Expires,
		Secure:   sc.Secure,
		HttpOnly: sc.HttpOnly,
	}
}
