// Package main seeds an OpenMusic database with demo users, albums, songs and a playlist.
//
// Usage:
//
//	go run ./cmd/seed --metadata-path ~/.openmusic
//	go run ./cmd/seed --password secret --with-playlist=false
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/config"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/service"
	"github.com/openmusic/openmusic-server/internal/store/sqlite"
)

type demoAlbum struct {
	name  string
	year  int
	songs []service.SongPayload
}

var demoUsers = []service.UserPayload{
	{Username: "dicoding", Fullname: "Dicoding Indonesia"},
	{Username: "johndoe", Fullname: "John Doe"},
}

var demoAlbums = []demoAlbum{
	{
		name: "Viva la Vida", year: 2008,
		songs: []service.SongPayload{
			{Title: "Life in Technicolor", Year: 2008, Genre: "Indie", Performer: "Coldplay", Duration: seconds(149)},
			{Title: "Viva la Vida", Year: 2008, Genre: "Indie", Performer: "Coldplay", Duration: seconds(242)},
			{Title: "Lost!", Year: 2008, Genre: "Indie", Performer: "Coldplay", Duration: seconds(236)},
		},
	},
	{
		name: "Currents", year: 2015,
		songs: []service.SongPayload{
			{Title: "Let It Happen", Year: 2015, Genre: "Psychedelic", Performer: "Tame Impala", Duration: seconds(467)},
			{Title: "The Less I Know the Better", Year: 2015, Genre: "Psychedelic", Performer: "Tame Impala", Duration: seconds(216)},
		},
	},
}

func seconds(n int) *int { return &n }

func main() {
	app := &cli.Command{
		Name:  "seed",
		Usage: "Seed the OpenMusic database with demo data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metadata-path",
				Aliases: []string{"m"},
				Usage:   "Base data directory (defaults to METADATA_PATH or ~/.openmusic)",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password given to every demo user",
				Value: "secret",
			},
			&cli.BoolFlag{
				Name:  "with-playlist",
				Usage: "Create a playlist owned by the first user and shared with the second",
				Value: true,
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	var args []string
	if p := cmd.String("metadata-path"); p != "" {
		args = append(args, "-metadata-path", p)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Environment: cfg.App.Environment, Level: logger.ParseLevel(cfg.Logger.Level)})

	st, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return err
	}
	defer st.Close()

	mem, err := cache.NewMemory(1 << 20)
	if err != nil {
		return err
	}
	defer mem.Close()

	resolver := access.NewResolver(st, log.Logger)
	users := service.NewUserService(st, log.Logger)
	albums := service.NewAlbumService(st, mem, nil, log.Logger)
	songs := service.NewSongService(st, log.Logger)
	playlists := service.NewPlaylistService(st, resolver, nil, log.Logger)
	collaborations := service.NewCollaborationService(st, resolver, log.Logger)

	var userIDs []string
	for _, u := range demoUsers {
		u.Password = cmd.String("password")
		id, err := users.Register(ctx, u)
		if errors.Is(err, domainerrors.ErrInvariant) {
			fmt.Printf("user %s already exists, skipping\n", u.Username)
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", u.Username, err)
		}
		fmt.Printf("user    %s  %s\n", id, u.Username)
		userIDs = append(userIDs, id)
	}

	var songIDs []string
	for _, a := range demoAlbums {
		albumID, err := albums.Create(ctx, service.AlbumPayload{Name: a.name, Year: a.year})
		if err != nil {
			return fmt.Errorf("create album %q: %w", a.name, err)
		}
		fmt.Printf("album   %s  %s\n", albumID, a.name)

		for _, s := range a.songs {
			s.AlbumID = albumID
			songID, err := songs.Create(ctx, s)
			if err != nil {
				return fmt.Errorf("create song %q: %w", s.Title, err)
			}
			fmt.Printf("song    %s  %s\n", songID, s.Title)
			songIDs = append(songIDs, songID)
		}
	}

	if !cmd.Bool("with-playlist") {
		return nil
	}
	if len(userIDs) < 2 {
		fmt.Println("demo users already existed, skipping playlist")
		return nil
	}

	owner, collaborator := userIDs[0], userIDs[1]
	playlistID, err := playlists.Create(ctx, owner, service.PlaylistPayload{Name: "Road Trip"})
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}
	fmt.Printf("playlist %s  Road Trip\n", playlistID)

	if _, err := collaborations.Add(ctx, owner, service.CollaborationPayload{PlaylistID: playlistID, UserID: collaborator}); err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}

	for i, songID := range songIDs {
		// Alternate who adds songs so the activity log shows both users.
		by := owner
		if i%2 == 1 {
			by = collaborator
		}
		if err := playlists.AddSong(ctx, playlistID, by, service.PlaylistSongPayload{SongID: songID}); err != nil {
			return fmt.Errorf("add song %s: %w", songID, err)
		}
	}

	fmt.Printf("seeded %d songs into playlist %s\n", len(songIDs), playlistID)
	return nil
}
