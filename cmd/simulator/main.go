package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitquest/internal/daycycle"
	"github.com/2beens/fitquest/internal/engine"
	"github.com/2beens/fitquest/internal/logging"
	"github.com/2beens/fitquest/internal/syncer"
	"github.com/2beens/fitquest/internal/workouts"
)

// simulator drives the client state machine against a running backend:
// hydrates from the server, applies actions locally, and lets the sync
// coordinator mirror the changes back. Useful for poking at day
// boundaries and reset behavior without a real app build.
func main() {
	serverURL := flag.String("server", "http://localhost:9000", "fitquest backend base URL")
	token := flag.String("token", "", "session token (get one via /a/login)")
	boundaryHour := flag.Int("boundary", daycycle.DefaultBoundaryHour, "day boundary hour")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    *logLevel,
	})

	if *token == "" {
		log.Fatalln("token not set, login first and pass -token")
	}

	state := engine.NewState(*boundaryHour)

	pusher := syncer.NewHTTPPusher(*serverURL+"/workouts/sync", *token)
	coordinator := syncer.NewCoordinator(pusher, syncer.DefaultConfig())
	defer coordinator.Close()

	if remote, err := fetchState(*serverURL, *token); err != nil {
		log.Warnf("hydrate from server failed, starting fresh: %s", err)
	} else {
		next, _, err := engine.Apply(time.Now(), state, engine.Hydrate{Remote: *remote})
		if err != nil {
			log.Fatalf("hydrate: %s", err)
		}
		state = next
		if err := coordinator.Hydrated(state.SyncPayload()); err != nil {
			log.Errorf("mark hydrated: %s", err)
		}
		log.Infof("hydrated: %d coins, streak %d", state.Coins, state.Streak)
	}

	fmt.Println("commands: state | plans | complete <planId> <exerciseId> <reps> | reset | next-day | prev-day | set-date <YYYY-MM-DD> | reset-date | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "state" {
			printDay(state)
			continue
		}

		action, done := parseAction(fields)
		if done {
			return
		}
		if action == nil {
			continue
		}

		next, effects, err := engine.Apply(time.Now(), state, action)
		if err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}
		state = next

		for _, effect := range effects {
			switch effect {
			case engine.EffectSync:
				if err := coordinator.StateChanged(state.SyncPayload()); err != nil {
					log.Errorf("schedule sync: %s", err)
				}
			case engine.EffectReload:
				reloaded, _, err := engine.Apply(time.Now(), state, engine.LoadWorkoutData{})
				if err != nil {
					log.Errorf("reload workout data: %s", err)
					continue
				}
				state = reloaded
			}
		}

		printDay(state)
	}
}

func parseAction(fields []string) (engine.Action, bool) {
	switch fields[0] {
	case "quit", "exit":
		return nil, true
	case "plans":
		return engine.LoadWorkoutData{}, false
	case "reset":
		return engine.ResetTodayIfNeeded{}, false
	case "next-day":
		return engine.AdminNextDay{}, false
	case "prev-day":
		return engine.AdminPrevDay{}, false
	case "reset-date":
		return engine.AdminResetDate{}, false
	case "set-date":
		if len(fields) != 2 {
			fmt.Println("usage: set-date <YYYY-MM-DD>")
			return nil, false
		}
		return engine.AdminSetDate{Date: daycycle.DayKey(fields[1])}, false
	case "complete":
		if len(fields) != 4 {
			fmt.Println("usage: complete <planId> <exerciseId> <reps>")
			return nil, false
		}
		reps, err := strconv.Atoi(fields[3])
		if err != nil {
			fmt.Println("reps must be a number")
			return nil, false
		}
		return engine.CompleteExercise{
			PlanID:        fields[1],
			ExerciseID:    fields[2],
			RequestedReps: reps,
		}, false
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
		return nil, false
	}
}

func printDay(state engine.State) {
	fmt.Printf(
		"day %s | coins %d | streak %d | calories today %.1f | exercises today %d\n",
		state.DailyStats.Date, state.Coins, state.Streak,
		state.DailyStats.Calories, state.DailyStats.ExercisesCompleted,
	)
}

func fetchState(serverURL, token string) (*workouts.UserState, error) {
	req, err := http.NewRequest(http.MethodGet, serverURL+"/workouts/state", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-FITQUEST-TOKEN", token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get state failed with status %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var state workouts.UserState
	if err := json.Unmarshal(respBytes, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}
