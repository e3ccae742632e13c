package api

import (
	"github.com/openmusic/openmusic-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Album         *service.AlbumService
	Cover         *service.CoverService
	Like          *service.LikeService
	Song          *service.SongService
	User          *service.UserService
	Auth          *service.AuthenticationService
	Playlist      *service.PlaylistService
	Collaboration *service.CollaborationService
	Export        *service.ExportService
}
