package workouts

import (
	"context"
	"encoding/json"
)

// repoMock is an in-memory stand-in for the user_state table, version
// counting included, so service tests can exercise the conflict path.
type repoMock struct {
	states   map[int][]byte
	versions map[int]int
}

func NewMockStateRepo() *repoMock {
	return &repoMock{
		states:   make(map[int][]byte),
		versions: make(map[int]int),
	}
}

func (r *repoMock) CreateState(_ context.Context, userID int, state *UserState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}
	r.states[userID] = doc
	r.versions[userID] = 1
	return nil
}

func (r *repoMock) GetState(_ context.Context, userID int) (*UserState, int, error) {
	doc, ok := r.states[userID]
	if !ok {
		return nil, 0, ErrUserStateNotFound
	}
	var state UserState
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, 0, err
	}
	return &state, r.versions[userID], nil
}

func (r *repoMock) SaveState(_ context.Context, userID int, state *UserState, version int) error {
	if _, ok := r.states[userID]; !ok {
		return ErrUserStateNotFound
	}
	if r.versions[userID] != version {
		return ErrVersionConflict
	}
	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}
	r.states[userID] = doc
	r.versions[userID] = version + 1
	return nil
}

// BumpVersion simulates a concurrent writer landing between a read and a
// conditional write.
func (r *repoMock) BumpVersion(userID int) {
	r.versions[userID]++
}
