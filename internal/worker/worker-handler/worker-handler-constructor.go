package worker_handler

import (
	user_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/user"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type WorkerHandler struct {
	AppState *state.AppState
	Users    user_repo.UserRepoContract
}

func NewWorkerHandler(appState *state.AppState) *WorkerHandler {
	return &WorkerHandler{
		AppState: appState,
		Users:    user_repo.NewUserRepo(appState),
	}
}
