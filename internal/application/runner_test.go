package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
	"github.com/bnema/nova-runner/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loadErr  error
	ip       string
	ipErr    error
	tokenErr error

	profile        domain.Profile
	profileOutcome domain.Outcome
	balance        domain.Outcome
	tasks          []domain.Task
	tasksOutcome   domain.Outcome
	completions    map[string]domain.Outcome
	checkIn        domain.Outcome
	credit         domain.Outcome

	logger *zap.Logger
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		profile:        domain.Profile{Email: "a@example.com", EmailBound: true, TwitterName: "nova", TwitterBound: true},
		profileOutcome: domain.Outcome{Success: true, Status: http.StatusOK},
		balance:        domain.Outcome{Success: true, Status: http.StatusOK, Data: json.RawMessage(`{"daily":1,"tasks":"2.5","note":"x"}`)},
		tasksOutcome:   domain.Outcome{Success: true, Status: http.StatusOK},
		completions:    map[string]domain.Outcome{},
		checkIn:        domain.Outcome{Success: true, Status: http.StatusOK},
		credit:         domain.Outcome{Success: true, Status: http.StatusOK, Data: json.RawMessage(`{"credit":15}`)},
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) LoadSession(context.Context) error {
	f.record("LoadSession")
	return f.loadErr
}

func (f *fakeAPI) ResolveIP(context.Context) (string, error) {
	f.record("ResolveIP")
	return f.ip, f.ipErr
}

func (f *fakeAPI) ValidToken(_ context.Context, forceNew bool) (string, error) {
	f.record("ValidToken")
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token", nil
}

func (f *fakeAPI) Profile(context.Context) (domain.Profile, domain.Outcome) {
	f.record("Profile")
	if !f.profileOutcome.Success {
		return domain.Profile{}, f.profileOutcome
	}
	return f.profile, f.profileOutcome
}

func (f *fakeAPI) Balance(context.Context) domain.Outcome {
	f.record("Balance")
	return f.balance
}

func (f *fakeAPI) CheckIn(_ context.Context, txHash string) domain.Outcome {
	f.record("CheckIn:" + txHash)
	return f.checkIn
}

func (f *fakeAPI) CheckInCredit(context.Context) domain.Outcome {
	f.record("CheckInCredit")
	return f.credit
}

func (f *fakeAPI) Tasks(context.Context) ([]domain.Task, domain.Outcome) {
	f.record("Tasks")
	return f.tasks, f.tasksOutcome
}

func (f *fakeAPI) CompleteTask(_ context.Context, taskID string) domain.Outcome {
	f.record("CompleteTask:" + taskID)
	if outcome, ok := f.completions[taskID]; ok {
		return outcome
	}
	return domain.Outcome{Success: true, Status: http.StatusOK, Data: json.RawMessage(`{"ok":true}`)}
}

func (f *fakeAPI) SetLogger(logger *zap.Logger) {
	f.logger = logger
}

func newTestRunner(settings RunnerSettings, checkIns *mocks.MockCheckInSubmitter) (*Runner, *[]time.Duration) {
	var waits []time.Duration
	runner := NewRunner(settings, nil)
	if checkIns != nil {
		runner.checkIns = checkIns
	}
	runner.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	runner.jitter = func(_, hi time.Duration) time.Duration {
		return hi
	}

	return runner, &waits
}

var runnerAccount = domain.Account{Index: 2, Address: "0xabc", PrivateKey: "0xkey"}

func TestRunnerCompletesPendingTasksInOrder(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.tasks = []domain.Task{
		{ID: "1", Text: "done already", Done: true},
		{ID: "2", Text: "Follow\nmore text"},
		{ID: "3", Text: "skipped"},
		{ID: "4", Text: "Repost"},
	}
	api.completions["4"] = domain.Outcome{Status: http.StatusBadGateway, Err: errors.New("status 502")}

	runner, waits := newTestRunner(RunnerSettings{
		AutoTask:      true,
		SkipTasks:     []string{"3"},
		TaskJitterMin: time.Second,
		TaskJitterMax: 4 * time.Second,
	}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.NoError(t, err)

	assert.Equal(t, StageDone, report.Stage)
	assert.Equal(t, 1, report.TasksDone)
	assert.Equal(t, 1, report.TasksFailed)
	assert.InDelta(t, 3.5, report.Points, 0.0001)
	assert.Equal(t, "nova", report.Profile.TwitterName)
	assert.Equal(t, []string{
		"LoadSession", "ValidToken", "Profile", "Balance",
		"Tasks", "CompleteTask:2", "CompleteTask:4",
		"Profile", "Balance",
	}, api.recorded())
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second, time.Second}, *waits)
}

func TestRunnerProxyCheckFailureIsFatal(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.ipErr = errors.New("proxy refused")

	runner, waits := newTestRunner(RunnerSettings{UseProxy: true, AutoTask: true}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageProxyCheck, stageErr.Stage)
	assert.Equal(t, StageProxyCheck, report.Stage)
	assert.Equal(t, []string{"LoadSession", "ResolveIP"}, api.recorded())
	assert.Empty(t, *waits)
}

func TestRunnerProxyModeWaitsStartJitterAndTagsLogger(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.ip = "203.0.113.7"

	runner, waits := newTestRunner(RunnerSettings{
		UseProxy:       true,
		StartJitterMin: time.Second,
		StartJitterMax: 15 * time.Second,
	}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.7", report.IP)
	assert.NotNil(t, api.logger)
	assert.Equal(t, []time.Duration{15 * time.Second, time.Second}, *waits)
	assert.NotContains(t, api.recorded(), "Tasks")
}

func TestRunnerAuthenticationFailureIsFatal(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.tokenErr = domain.ErrAuthenticationFailed

	runner, _ := newTestRunner(RunnerSettings{AutoTask: true}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, StageAuthenticate, report.Stage)
	assert.Equal(t, []string{"LoadSession", "ValidToken"}, api.recorded())
}

func TestRunnerStopsWhenTwitterIsNotBound(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.profile.TwitterBound = false

	runner, _ := newTestRunner(RunnerSettings{AutoTask: true, AutoCheckIn: true}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.NoError(t, err)
	assert.Equal(t, StageSyncProfile, report.Stage)
	assert.Equal(t, []string{"LoadSession", "ValidToken", "Profile", "Balance"}, api.recorded())
}

func TestRunnerToleratesProfileFailure(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.profileOutcome = domain.Outcome{Status: http.StatusBadRequest, Err: domain.ErrProtocolMismatch}

	runner, _ := newTestRunner(RunnerSettings{AutoTask: true}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.NoError(t, err)
	assert.Equal(t, StageSyncProfile, report.Stage)
	assert.Zero(t, report.Points)
	assert.NotContains(t, api.recorded(), "Tasks")
}

func TestRunnerAbortsTasksOnRefreshFailure(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.tasks = []domain.Task{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}}
	api.completions["1"] = domain.Outcome{Status: http.StatusUnauthorized, Err: domain.ErrAuthenticationFailed}

	runner, _ := newTestRunner(RunnerSettings{AutoTask: true}, nil)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, StageTasks, report.Stage)
	assert.NotContains(t, api.recorded(), "CompleteTask:2")
}

func TestRunnerCheckInReportsTransaction(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	checkIns := mocks.NewMockCheckInSubmitter(t)
	checkIns.On("SubmitCheckIn", mock.Anything, runnerAccount).Return("0xtx", nil).Once()

	runner, _ := newTestRunner(RunnerSettings{AutoCheckIn: true, ExplorerURL: "https://bscscan.com/tx/"}, checkIns)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.NoError(t, err)
	assert.Equal(t, "0xtx", report.CheckInTx)
	assert.Equal(t, StageDone, report.Stage)
	assert.Equal(t, []string{
		"LoadSession", "ValidToken", "Profile", "Balance",
		"CheckIn:0xtx", "CheckInCredit",
		"Profile", "Balance",
	}, api.recorded())
}

func TestRunnerCheckInFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.tasks = []domain.Task{{ID: "9", Text: "Like"}}
	checkIns := mocks.NewMockCheckInSubmitter(t)
	checkIns.On("SubmitCheckIn", mock.Anything, runnerAccount).Return("", errors.New("insufficient balance")).Once()

	runner, _ := newTestRunner(RunnerSettings{AutoCheckIn: true, AutoTask: true}, checkIns)

	report, err := runner.Run(context.Background(), runnerAccount, api, nil)
	require.NoError(t, err)
	assert.Empty(t, report.CheckInTx)
	assert.Equal(t, 1, report.TasksDone)
	assert.NotContains(t, api.recorded(), "CheckInCredit")
}

func TestRunnerJobBuildsClientPerBinding(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	runner, _ := newTestRunner(RunnerSettings{}, nil)

	var gotBinding domain.Binding
	var gotUserAgent string
	job := runner.Job(func(binding domain.Binding, userAgent string, _ *zap.Logger) ports.RewardsAPI {
		gotBinding = binding
		gotUserAgent = userAgent
		return api
	}, map[string]string{runnerAccount.Address: "ua-1"}, nil)

	binding := domain.Binding{Account: runnerAccount, Proxy: "http://proxy:1"}
	require.NoError(t, job(context.Background(), binding))
	assert.Equal(t, binding, gotBinding)
	assert.Equal(t, "ua-1", gotUserAgent)

	api.tokenErr = domain.ErrAuthenticationFailed
	err := job(context.Background(), binding)
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestNewJitterStaysInRange(t *testing.T) {
	t.Parallel()

	jitter := newJitter(42)
	for i := 0; i < 100; i++ {
		d := jitter(time.Second, 3*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
	assert.Equal(t, 2*time.Second, jitter(2*time.Second, time.Second))
}
