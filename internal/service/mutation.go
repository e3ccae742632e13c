package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/store"
)

const (
	msgAddPlaylistSongFailed = "Failed to add song to playlist"
	msgAddActivityFailed     = "Failed to add activity"
)

// addMembership inserts the playlist-song edge and its "add" activity in one
// transaction. Callers have already checked access and song existence.
func (s *PlaylistService) addMembership(ctx context.Context, playlistID, songID, userID string) error {
	edgeID, err := id.Generate("playlist-song")
	if err != nil {
		return fmt.Errorf("generate playlist song ID: %w", err)
	}
	activityID, err := id.Generate("activity")
	if err != nil {
		return fmt.Errorf("generate activity ID: %w", err)
	}

	now := time.Now()
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		got, err := tx.InsertPlaylistSong(ctx, &domain.PlaylistSong{
			ID:         edgeID,
			PlaylistID: playlistID,
			SongID:     songID,
			CreatedAt:  now,
		})
		if err != nil || got == "" {
			return invariant(msgAddPlaylistSongFailed, err)
		}

		got, err = tx.InsertPlaylistActivity(ctx, &domain.PlaylistActivity{
			ID:         activityID,
			PlaylistID: playlistID,
			SongID:     songID,
			UserID:     userID,
			Action:     domain.ActivityAdd,
			Time:       now,
		})
		if err != nil || got == "" {
			return invariant(msgAddPlaylistSongFailed, err)
		}
		return nil
	})
	s.metrics.PlaylistMutation(string(domain.ActivityAdd), err)
	if err != nil {
		return err
	}

	s.logger.Debug("song added to playlist", "playlist_id", playlistID, "song_id", songID, "user_id", userID)
	return nil
}

// removeMembership deletes the playlist-song edge and appends a "delete"
// activity in one transaction.
func (s *PlaylistService) removeMembership(ctx context.Context, playlistID, songID, userID string) error {
	activityID, err := id.Generate("activity")
	if err != nil {
		return fmt.Errorf("generate activity ID: %w", err)
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.DeletePlaylistSong(ctx, playlistID, songID)
		if err != nil {
			return fmt.Errorf("delete playlist song: %w", err)
		}
		if n == 0 {
			return domainerrors.NotFoundf("Playlist id %s with song id %s is not found", playlistID, songID)
		}

		got, err := tx.InsertPlaylistActivity(ctx, &domain.PlaylistActivity{
			ID:         activityID,
			PlaylistID: playlistID,
			SongID:     songID,
			UserID:     userID,
			Action:     domain.ActivityDelete,
			Time:       time.Now(),
		})
		if err != nil || got == "" {
			return invariant(msgAddActivityFailed, err)
		}
		return nil
	})
	s.metrics.PlaylistMutation(string(domain.ActivityDelete), err)
	if err != nil {
		return err
	}

	s.logger.Debug("song removed from playlist", "playlist_id", playlistID, "song_id", songID, "user_id", userID)
	return nil
}

func invariant(msg string, cause error) error {
	e := domainerrors.Invariant(msg)
	if cause != nil {
		return e.WithCause(cause)
	}
	return e
}
