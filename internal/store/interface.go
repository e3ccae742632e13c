// Package store defines the persistence interface for the OpenMusic server.
package store

import (
	"context"
	"time"

	"github.com/openmusic/openmusic-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Lookups of a single row return ErrNotFound when the row is absent.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UserExists(ctx context.Context, id string) (bool, error)

	// Authentications
	CreateAuthentication(ctx context.Context, auth *domain.Authentication) error
	GetAuthenticationByTokenHash(ctx context.Context, tokenHash string) (*domain.Authentication, error)
	DeleteAuthenticationByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredAuthentications(ctx context.Context, now time.Time) (int, error)

	// Albums
	CreateAlbum(ctx context.Context, album *domain.Album) error
	GetAlbum(ctx context.Context, id string) (*domain.Album, error)
	UpdateAlbum(ctx context.Context, album *domain.Album) error
	UpdateAlbumCover(ctx context.Context, id, cover, blurHash string) error
	DeleteAlbum(ctx context.Context, id string) error
	AlbumExists(ctx context.Context, id string) (bool, error)

	// Songs
	CreateSong(ctx context.Context, song *domain.Song) error
	GetSong(ctx context.Context, id string) (*domain.Song, error)
	ListSongs(ctx context.Context, filter domain.SongFilter) ([]domain.SongSummary, error)
	ListAlbumSongs(ctx context.Context, albumID string) ([]domain.SongSummary, error)
	UpdateSong(ctx context.Context, song *domain.Song) error
	DeleteSong(ctx context.Context, id string) error
	SongExists(ctx context.Context, id string) (bool, error)

	// Playlists
	CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error
	GetPlaylistOwner(ctx context.Context, id string) (string, error)
	GetPlaylistSummary(ctx context.Context, id string) (*domain.PlaylistSummary, error)
	ListPlaylistsForUser(ctx context.Context, userID string) ([]domain.PlaylistSummary, error)
	ListPlaylistSongs(ctx context.Context, playlistID string) ([]domain.SongSummary, error)
	ListPlaylistActivities(ctx context.Context, playlistID string) ([]domain.ActivityEntry, error)
	DeletePlaylist(ctx context.Context, id string) error

	// Collaborations
	CreateCollaboration(ctx context.Context, collab *domain.Collaboration) error
	DeleteCollaboration(ctx context.Context, playlistID, userID string) error
	IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error)

	// Likes
	CountAlbumLikes(ctx context.Context, albumID string) (int, error)

	// WithTx runs fn inside a single transaction. The transaction commits
	// only when fn returns nil; any error or panic rolls it back.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of statements that may run inside WithTx.
// Insert methods return the identifier of the row they created.
type Tx interface {
	InsertPlaylistSong(ctx context.Context, ps *domain.PlaylistSong) (string, error)
	DeletePlaylistSong(ctx context.Context, playlistID, songID string) (int64, error)
	InsertPlaylistActivity(ctx context.Context, activity *domain.PlaylistActivity) (string, error)

	AlbumExists(ctx context.Context, albumID string) (bool, error)
	InsertAlbumLike(ctx context.Context, like *domain.AlbumLike) (string, error)
	DeleteAlbumLike(ctx context.Context, albumID, userID string) (int64, error)
}
