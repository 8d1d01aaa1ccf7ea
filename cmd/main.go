package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ToyoKou0322/my-sns-app/config"
	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	"github.com/ToyoKou0322/my-sns-app/internal/preview"
	"github.com/ToyoKou0322/my-sns-app/internal/realtime"
	message_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/message"
	room_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/room"
	"github.com/ToyoKou0322/my-sns-app/internal/routers"
	"github.com/ToyoKou0322/my-sns-app/internal/utils/types"
	"github.com/ToyoKou0322/my-sns-app/internal/websocket"
	"github.com/ToyoKou0322/my-sns-app/internal/worker"
	"github.com/ToyoKou0322/my-sns-app/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize the application
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	wsHub := websocket.NewHub()
	log.Info().Msg("Websocket hub initialized")

	authFunc := websocket.JWTWebSocketAuth(appState.JwtSecret.Public, appState.Redis)
	wsHandler := websocket.NewWebSocketHandler(wsHub, authFunc, 10000)
	log.Info().Msg("Websocket handler initialized")

	// the bridge turns room/post changes into snapshot pushes for every
	// watched scope
	roomRepo := room_repo.NewRoomRepo(appState)
	messageRepo := message_repo.NewMessageRepo(appState)
	bridge := realtime.NewBridge(appState.Redis, wsHub,
		func(ctx context.Context) ([]entity.Room, error) {
			rooms, appErr := roomRepo.ListRooms(ctx)
			if appErr != nil {
				return nil, appErr
			}
			return rooms, nil
		},
		func(ctx context.Context, roomID string) ([]entity.Message, error) {
			messages, appErr := messageRepo.ListByRoom(ctx, roomID)
			if appErr != nil {
				return nil, appErr
			}
			return messages, nil
		})
	go bridge.Run(ctx)

	fetcher := preview.NewFetcher(
		config.Conf.PREVIEW.Endpoint,
		time.Duration(config.Conf.PREVIEW.TimeoutSeconds)*time.Second,
		appState.Redis,
		time.Duration(config.Conf.PREVIEW.CacheTTLHours)*time.Hour,
	)

	r := routers.NewRouter(appState, wsHandler, fetcher)

	workerPool := worker.NewWorkerPool(appState, 5, types.DLQRetryConfig{
		BatchSize:      20,
		RetryInterval:  5 * time.Minute,
		MaxRetryCount:  3,
		BackoffFactor:  2.0,
		DatabaseName:   "talkroom",
		CollectionName: "dlq_jobs",
	})
	workerPool.Start(ctx)
	workerPool.StartDLQWorker(ctx)
	workerPool.StartDLQRetryConsumer(ctx)

	server := &http.Server{
		Addr:         config.Conf.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// serve the application
	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")
	// gracefully shutdown the application
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}
	wsHub.Close()
	workerPool.Wait()
}
