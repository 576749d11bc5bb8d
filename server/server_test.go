package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"PlaylistFM/cache"
	"PlaylistFM/core/auth"
	"PlaylistFM/core/input"
	"PlaylistFM/core/playlist"
	"PlaylistFM/core/plugin/builtin"
	"PlaylistFM/model"
	"PlaylistFM/repository"
)

type testEnv struct {
	srv *httptest.Server
	dir string
}

type envOptions struct {
	secret string
	cache  *cache.SongCache
	repo   repository.StoredPlaylistRepository
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	dir := t.TempDir()
	opener := input.NewRegistry(nil, nil, dir)

	reg := builtin.NewRegistry(builtin.Deps{Opener: opener, Library: opts.repo})
	require.NoError(t, reg.GlobalInit(nil))
	t.Cleanup(reg.GlobalFinish)

	resolver := playlist.NewResolver(reg, opener)
	routerOpts := Options{
		Playlists: NewPlaylistHandler(resolver, opts.cache, nil, opener.ConfinedPath),
		JWTSecret: opts.secret,
	}
	if opts.repo != nil {
		routerOpts.Library = NewLibraryHandler(opts.repo, opts.cache)
	}

	srv := httptest.NewServer(NewRouter(routerOpts))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, dir: dir}
}

func (e *testEnv) writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (e *testEnv) resolveURL(uri string) string {
	return e.srv.URL + "/api/playlist/resolve?uri=" + url.QueryEscape(uri)
}

func newSongCache(t *testing.T) (*cache.SongCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewSongCache(client, time.Minute), mr
}

func newTestRepo(t *testing.T) repository.StoredPlaylistRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "server.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.StoredPlaylist{}, &model.StoredPlaylistItem{}))
	return repository.NewGormStoredPlaylistRepository(db)
}

func getResolved(t *testing.T, target string) (int, resolveResponse) {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out resolveResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func songURIs(songs []model.Song) []string {
	out := make([]string, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.URI)
	}
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, err := http.Get(env.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-42")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "req-42", resp2.Header.Get(RequestIDHeader))
}

func TestPreflightBypassesAuth(t *testing.T) {
	env := newTestEnv(t, envOptions{secret: "s3cret"})

	req, err := http.NewRequest(http.MethodOptions, env.resolveURL("list.m3u"), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPluginsListing(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, err := http.Get(env.srv.URL + "/api/playlist/plugins")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var plugins []pluginInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plugins))
	require.Len(t, plugins, 8)
	assert.Equal(t, "extm3u", plugins[0].Name)
	assert.True(t, plugins[0].Enabled)
	assert.Equal(t, "soundcloud", plugins[6].Name)
	assert.False(t, plugins[6].Enabled)
	assert.Equal(t, "library", plugins[7].Name)
	assert.False(t, plugins[7].Enabled)
}

func TestResolveLocalPlaylist(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.writeFile(t, "list.m3u", "a.mp3\n# comment\n\nb.mp3\n")

	status, out := getResolved(t, env.resolveURL("list.m3u"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "list.m3u", out.URI)
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, songURIs(out.Songs))
}

func TestResolveErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.writeFile(t, "notes.txt", "a.mp3\n")

	status, _ := getResolved(t, env.srv.URL+"/api/playlist/resolve")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getResolved(t, env.resolveURL("notes.txt"))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = getResolved(t, env.resolveURL("missing.m3u"))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestResolveStaysInsideMusicDir(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	inside := env.writeFile(t, "list.m3u", "a.mp3\n")

	outsideDir := t.TempDir()
	outside := filepath.Join(outsideDir, "secret.m3u")
	require.NoError(t, os.WriteFile(outside, []byte("/etc/shadow\n"), 0o644))
	escape, err := filepath.Rel(env.dir, outside)
	require.NoError(t, err)

	for _, uri := range []string{escape, outside, "file://" + outside, "../list.m3u"} {
		status, _ := getResolved(t, env.resolveURL(uri))
		assert.Equal(t, http.StatusBadRequest, status, uri)
	}

	for _, uri := range []string{inside, "file://" + inside, "sub/../list.m3u"} {
		status, out := getResolved(t, env.resolveURL(uri))
		require.Equal(t, http.StatusOK, status, uri)
		assert.Equal(t, []string{"a.mp3"}, songURIs(out.Songs))
	}

	conn := dialResolve(t, env, url.Values{"uri": {escape}})
	msgs := readMessages(t, conn)
	require.Len(t, msgs, 1)
	assert.NotEmpty(t, msgs[0]["error"])
}

func TestResolveRemoteStreamByMimeType(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xspf+xml; charset=utf-8")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
    <track><location>http://example.com/one.mp3</location><title>One</title><duration>61000</duration></track>
  </trackList>
</playlist>`))
	}))
	t.Cleanup(remote.Close)

	env := newTestEnv(t, envOptions{})
	status, out := getResolved(t, env.resolveURL(remote.URL+"/feed"))
	require.Equal(t, http.StatusOK, status)
	require.Len(t, out.Songs, 1)
	assert.Equal(t, "http://example.com/one.mp3", out.Songs[0].URI)
	require.NotNil(t, out.Songs[0].Tag)
	assert.Equal(t, "One", out.Songs[0].Tag.Title)
	assert.Equal(t, 61, out.Songs[0].Tag.Duration)
}

func TestResolveServesFromCache(t *testing.T) {
	songCache, mr := newSongCache(t)
	env := newTestEnv(t, envOptions{cache: songCache})
	path := env.writeFile(t, "list.m3u", "a.mp3\n")

	status, out := getResolved(t, env.resolveURL("list.m3u"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"a.mp3"}, songURIs(out.Songs))
	assert.True(t, mr.Exists(cache.SongKey(path)))

	// 文件没了，但缓存还在
	require.NoError(t, os.Remove(path))
	status, out = getResolved(t, env.resolveURL("list.m3u"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"a.mp3"}, songURIs(out.Songs))
}

func TestAuthGuard(t *testing.T) {
	env := newTestEnv(t, envOptions{secret: "s3cret"})
	target := env.srv.URL + "/api/playlist/plugins"

	resp, err := http.Get(target)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	do := func(header string) int {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", header)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, do("Token abc"))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer not-a-jwt"))

	wrong, err := auth.GenerateToken("other", "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+wrong))

	token, err := auth.GenerateToken("s3cret", "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do("Bearer "+token))

	resp, err = http.Get(env.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dialResolve(t *testing.T, env *testEnv, query url.Values) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/playlist/resolve?" + query.Encode()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessages(t *testing.T, conn *websocket.Conn) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			return out
		}
		out = append(out, msg)
		if msg["done"] == true || msg["error"] != nil {
			return out
		}
	}
}

func TestWebSocketSongFeed(t *testing.T) {
	songCache, _ := newSongCache(t)
	env := newTestEnv(t, envOptions{cache: songCache})
	env.writeFile(t, "list.m3u", "#EXTM3U\n#EXTINF:30,First\na.mp3\nb.mp3\n")

	// 第二次走缓存，结果必须一致
	for i := 0; i < 2; i++ {
		conn := dialResolve(t, env, url.Values{"uri": {"list.m3u"}})
		msgs := readMessages(t, conn)
		require.Len(t, msgs, 3)
		assert.Equal(t, "a.mp3", msgs[0]["uri"])
		assert.Equal(t, "First", msgs[0]["tag"].(map[string]any)["title"])
		assert.Equal(t, "b.mp3", msgs[1]["uri"])
		assert.Equal(t, true, msgs[2]["done"])
		assert.Equal(t, float64(2), msgs[2]["count"])
	}
}

func TestWebSocketUnknownPlaylist(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	conn := dialResolve(t, env, url.Values{"uri": {"nothing.txt"}})
	msgs := readMessages(t, conn)
	require.Len(t, msgs, 1)
	assert.NotEmpty(t, msgs[0]["error"])
}

func TestWebSocketTokenQuery(t *testing.T) {
	env := newTestEnv(t, envOptions{secret: "s3cret"})
	env.writeFile(t, "list.m3u", "a.mp3\n")

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/playlist/resolve?uri=list.m3u"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := auth.GenerateToken("s3cret", "alice", time.Hour)
	require.NoError(t, err)
	conn := dialResolve(t, env, url.Values{"uri": {"list.m3u"}, "token": {token}})
	msgs := readMessages(t, conn)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a.mp3", msgs[0]["uri"])
}

func putLibrary(t *testing.T, env *testEnv, name string, songs []model.Song) int {
	t.Helper()
	body, err := json.Marshal(saveLibraryRequest{Songs: songs})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, env.srv.URL+"/api/library/"+url.PathEscape(name), bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestLibraryLifecycle(t *testing.T) {
	songCache, _ := newSongCache(t)
	env := newTestEnv(t, envOptions{cache: songCache, repo: newTestRepo(t)})
	libURI := "library://" + url.PathEscape("road trip")

	assert.Equal(t, http.StatusCreated, putLibrary(t, env, "road trip", []model.Song{
		{URI: "a.mp3", Tag: &model.Tag{Title: "A", Duration: 200}},
		{URI: "b.mp3"},
	}))

	status, out := getResolved(t, env.resolveURL(libURI))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, songURIs(out.Songs))
	require.NotNil(t, out.Songs[0].Tag)
	assert.Equal(t, 200, out.Songs[0].Tag.Duration)
	assert.Nil(t, out.Songs[1].Tag)

	// 替换后缓存失效，解析结果立即更新
	assert.Equal(t, http.StatusOK, putLibrary(t, env, "road trip", []model.Song{{URI: "c.mp3"}}))
	status, out = getResolved(t, env.resolveURL(libURI))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"c.mp3"}, songURIs(out.Songs))

	resp, err := http.Get(env.srv.URL + "/api/library")
	require.NoError(t, err)
	var listed []model.StoredPlaylist
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)
	assert.Equal(t, "road trip", listed[0].Name)

	assert.Equal(t, http.StatusBadRequest, putLibrary(t, env, "broken", []model.Song{{URI: " "}}))

	req, err := http.NewRequest(http.MethodDelete, env.srv.URL+"/api/library/"+url.PathEscape("road trip"), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(env.srv.URL + "/api/library/" + url.PathEscape("road trip"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	status, _ = getResolved(t, env.resolveURL(libURI))
	assert.Equal(t, http.StatusNotFound, status)
}
