package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

func TestPlaylistOwnerAndSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedPlaylist(t, s, "playlist-1", "user-1")

	owner, err := s.GetPlaylistOwner(ctx, "playlist-1")
	if err != nil {
		t.Fatalf("GetPlaylistOwner: %v", err)
	}
	if owner != "user-1" {
		t.Errorf("owner: got %q, want user-1", owner)
	}

	summary, err := s.GetPlaylistSummary(ctx, "playlist-1")
	if err != nil {
		t.Fatalf("GetPlaylistSummary: %v", err)
	}
	if summary.Username != "alice" {
		t.Errorf("Username: got %q, want alice", summary.Username)
	}

	if _, err := s.GetPlaylistOwner(ctx, "playlist-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePlaylist_UnknownOwner(t *testing.T) {
	s := newTestStore(t)

	err := s.CreatePlaylist(context.Background(), &domain.Playlist{
		ID: "playlist-1", Name: "x", Owner: "user-missing", CreatedAt: time.Now(),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPlaylistsForUser_IncludesCollaborations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedUser(t, s, "user-2", "bob")
	seedPlaylist(t, s, "playlist-a", "user-1")
	seedPlaylist(t, s, "playlist-b", "user-2")
	seedPlaylist(t, s, "playlist-c", "user-2")

	if err := s.CreateCollaboration(ctx, &domain.Collaboration{
		ID: "collab-1", PlaylistID: "playlist-b", UserID: "user-1", CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateCollaboration: %v", err)
	}

	got, err := s.ListPlaylistsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPlaylistsForUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 playlists, got %d: %+v", len(got), got)
	}
	if got[0].ID != "playlist-a" || got[0].Username != "alice" {
		t.Errorf("playlists[0]: %+v", got[0])
	}
	if got[1].ID != "playlist-b" || got[1].Username != "bob" {
		t.Errorf("playlists[1]: %+v", got[1])
	}
}

func TestCollaborations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedUser(t, s, "user-2", "bob")
	seedPlaylist(t, s, "playlist-1", "user-1")

	c := &domain.Collaboration{ID: "collab-1", PlaylistID: "playlist-1", UserID: "user-2", CreatedAt: time.Now()}
	if err := s.CreateCollaboration(ctx, c); err != nil {
		t.Fatalf("CreateCollaboration: %v", err)
	}

	dup := *c
	dup.ID = "collab-2"
	if err := s.CreateCollaboration(ctx, &dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate: expected ErrAlreadyExists, got %v", err)
	}

	ok, err := s.IsCollaborator(ctx, "playlist-1", "user-2")
	if err != nil || !ok {
		t.Errorf("IsCollaborator: got %v, %v", ok, err)
	}

	if err := s.DeleteCollaboration(ctx, "playlist-1", "user-2"); err != nil {
		t.Fatalf("DeleteCollaboration: %v", err)
	}
	if err := s.DeleteCollaboration(ctx, "playlist-1", "user-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	if ok, _ := s.IsCollaborator(ctx, "playlist-1", "user-2"); ok {
		t.Error("collaboration should be gone")
	}
}

func TestDeletePlaylist_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedSong(t, s, "song-1", "", "Paradise", "Coldplay")
	seedPlaylist(t, s, "playlist-1", "user-1")
	addSong(t, s, "playlist-1", "song-1", "user-1")

	if err := s.DeletePlaylist(ctx, "playlist-1"); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM playlist_songs`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected memberships removed, got %d", n)
	}
	if err := s.DeletePlaylist(ctx, "playlist-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListPlaylistSongsAndActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedSong(t, s, "song-1", "", "Yellow", "Coldplay")
	seedSong(t, s, "song-2", "", "Trouble", "Coldplay")
	seedPlaylist(t, s, "playlist-1", "user-1")

	addSong(t, s, "playlist-1", "song-1", "user-1")
	addSong(t, s, "playlist-1", "song-2", "user-1")

	songs, err := s.ListPlaylistSongs(ctx, "playlist-1")
	if err != nil {
		t.Fatalf("ListPlaylistSongs: %v", err)
	}
	if len(songs) != 2 || songs[0].ID != "song-1" || songs[1].ID != "song-2" {
		t.Errorf("unexpected songs: %+v", songs)
	}

	activities, err := s.ListPlaylistActivities(ctx, "playlist-1")
	if err != nil {
		t.Fatalf("ListPlaylistActivities: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	if activities[0].Username != "alice" || activities[0].Title != "Yellow" || activities[0].Action != domain.ActivityAdd {
		t.Errorf("activities[0]: %+v", activities[0])
	}

	none, err := s.ListPlaylistActivities(ctx, "playlist-missing")
	if err != nil {
		t.Fatalf("ListPlaylistActivities: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no activities, got %d", len(none))
	}
}

// addSong adds a membership and its activity in one transaction.
func addSong(t *testing.T, s *Store, playlistID, songID, userID string) {
	t.Helper()
	now := time.Now()
	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		if _, err := tx.InsertPlaylistSong(context.Background(), &domain.PlaylistSong{
			ID: "ps-" + playlistID + "-" + songID, PlaylistID: playlistID, SongID: songID, CreatedAt: now,
		}); err != nil {
			return err
		}
		_, err := tx.InsertPlaylistActivity(context.Background(), &domain.PlaylistActivity{
			ID: "act-" + playlistID + "-" + songID, PlaylistID: playlistID, SongID: songID,
			UserID: userID, Action: domain.ActivityAdd, Time: now,
		})
		return err
	})
	if err != nil {
		t.Fatalf("add song %s to %s: %v", songID, playlistID, err)
	}
}
