package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/store"
)

type fakeStore struct {
	owners        map[string]string
	collaborators map[[2]string]bool
	ownerErr      error
	collabErr     error
	collabCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		owners:        map[string]string{"playlist-1": "user-owner"},
		collaborators: map[[2]string]bool{{"playlist-1", "user-collab"}: true},
	}
}

func (f *fakeStore) GetPlaylistOwner(_ context.Context, playlistID string) (string, error) {
	if f.ownerErr != nil {
		return "", f.ownerErr
	}
	owner, ok := f.owners[playlistID]
	if !ok {
		return "", store.ErrNotFound.WithMessage("playlist not found")
	}
	return owner, nil
}

func (f *fakeStore) IsCollaborator(_ context.Context, playlistID, userID string) (bool, error) {
	f.collabCalls++
	if f.collabErr != nil {
		return false, f.collabErr
	}
	return f.collaborators[[2]string{playlistID, userID}], nil
}

func TestResolver_Owner(t *testing.T) {
	r := NewResolver(newFakeStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		playlist string
		user     string
		want     Outcome
	}{
		{"owner", "playlist-1", "user-owner", Allowed},
		{"collaborator is not owner", "playlist-1", "user-collab", Denied},
		{"stranger", "playlist-1", "user-x", Denied},
		{"missing playlist", "playlist-missing", "user-owner", NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Owner(ctx, tt.playlist, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Outcome)
		})
	}
}

func TestResolver_Access(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		playlist string
		user     string
		want     Outcome
	}{
		{"owner", "playlist-1", "user-owner", Allowed},
		{"collaborator", "playlist-1", "user-collab", Allowed},
		{"stranger", "playlist-1", "user-x", Denied},
		{"missing playlist", "playlist-missing", "user-collab", NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(newFakeStore(), nil)
			d, err := r.Access(ctx, tt.playlist, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Outcome)
		})
	}
}

func TestResolver_MissingPlaylistSkipsCollaboratorCheck(t *testing.T) {
	fs := newFakeStore()
	// A dangling collaboration row must not make a missing playlist accessible.
	fs.collaborators[[2]string{"playlist-gone", "user-collab"}] = true
	r := NewResolver(fs, nil)

	err := r.VerifyAccess(context.Background(), "playlist-gone", "user-collab")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Zero(t, fs.collabCalls)
}

func TestResolver_DenialReasonPreserved(t *testing.T) {
	r := NewResolver(newFakeStore(), nil)

	err := r.VerifyAccess(context.Background(), "playlist-1", "user-x")
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	var de *domainerrors.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ReasonNotOwner, de.Message)
}

func TestResolver_CollaboratorLookupFailureKeepsDenial(t *testing.T) {
	fs := newFakeStore()
	fs.collabErr = errors.New("database is locked")
	r := NewResolver(fs, nil)

	d, err := r.Access(context.Background(), "playlist-1", "user-collab")
	require.NoError(t, err)
	assert.Equal(t, Denied, d.Outcome)
	assert.Equal(t, ReasonNotOwner, d.Reason)
}

func TestResolver_InfrastructureErrorPropagates(t *testing.T) {
	fs := newFakeStore()
	boom := errors.New("disk I/O error")
	fs.ownerErr = boom
	r := NewResolver(fs, nil)

	err := r.VerifyOwner(context.Background(), "playlist-1", "user-owner")
	assert.ErrorIs(t, err, boom)
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Allow().Err())
	assert.ErrorIs(t, Deny("no").Err(), domainerrors.ErrForbidden)
	assert.ErrorIs(t, Missing("gone").Err(), domainerrors.ErrNotFound)
	assert.Equal(t, "not_found", NotFound.String())
}
