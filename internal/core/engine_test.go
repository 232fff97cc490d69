package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonmarket/ledger-backend/pkg/clock"
	"carbonmarket/ledger-backend/pkg/payments"
)

type testEnv struct {
	engine   *Engine
	clock    *clock.Manual
	gateway  *payments.RecordingGateway
	deployer uuid.UUID
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:    clock.NewManual(100),
		gateway:  payments.NewRecordingGateway(true),
		deployer: uuid.New(),
	}
	env.engine = NewEngine(env.deployer, env.clock, env.gateway, opts...)
	return env
}

func validProjectRequest() RegisterProjectRequest {
	return RegisterProjectRequest{
		Name:                 "Mangrove Restoration",
		Location:             "Sundarbans",
		Category:             "reforestation",
		ExpectedAnnualOffset: 1000,
		Sensors:              []string{"SEN-001", "SEN-002"},
		BiodiversityScore:    50,
	}
}

// registerVerifiedProject registers a project and submits enough readings
// to cross the issuance threshold.
func (env *testEnv) registerVerifiedProject(t *testing.T, owner uuid.UUID, req RegisterProjectRequest) uint64 {
	t.Helper()
	projectID, err := env.engine.RegisterProject(owner, req)
	require.NoError(t, err)
	for i := 0; i < DefaultVerificationThreshold; i++ {
		env.clock.Advance(1)
		require.NoError(t, env.engine.SubmitSensorReading("SEN-001", projectID, 5, 21, 60, "hash-a"))
	}
	return projectID
}

func TestRegisterProject(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	id, err := env.engine.RegisterProject(owner, validProjectRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	project, err := env.engine.GetProject(id)
	require.NoError(t, err)
	assert.Equal(t, owner, project.Owner)
	assert.True(t, project.Active)
	assert.Equal(t, uint64(100), project.CreatedAt)

	rec, err := env.engine.GetProjectVerification(id)
	require.NoError(t, err)
	assert.Zero(t, rec.TotalReadings)
	assert.Zero(t, rec.TotalCO2Grams)

	// Ids are monotonic from 1.
	id2, err := env.engine.RegisterProject(owner, validProjectRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2)
}

func TestRegisterProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	req := validProjectRequest()
	req.ExpectedAnnualOffset = 0
	_, err := env.engine.RegisterProject(owner, req)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	req = validProjectRequest()
	req.BiodiversityScore = 101
	_, err = env.engine.RegisterProject(owner, req)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	req = validProjectRequest()
	req.Sensors = make([]string, MaxProjectSensors+1)
	_, err = env.engine.RegisterProject(owner, req)
	assert.ErrorIs(t, err, ErrInvalidSensor)
}

func TestSubmitSensorReading(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	projectID, err := env.engine.RegisterProject(owner, validProjectRequest())
	require.NoError(t, err)

	env.clock.Advance(1)
	require.NoError(t, env.engine.SubmitSensorReading("SEN-001", projectID, 250, -3, 70, "abc123"))

	reading, err := env.engine.GetSensorReading("SEN-001", 101)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), reading.CO2Grams)
	assert.Equal(t, int32(-3), reading.Temperature)
	assert.True(t, reading.Verified)

	rec, err := env.engine.GetProjectVerification(projectID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.TotalReadings)
	assert.Equal(t, uint64(1), rec.VerifiedReadings)
	assert.Equal(t, uint64(250), rec.TotalCO2Grams)
	assert.Equal(t, uint64(101), rec.LastVerification)
	assert.LessOrEqual(t, rec.VerifiedReadings, rec.TotalReadings)
}

func TestSubmitSensorReadingValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	projectID, err := env.engine.RegisterProject(owner, validProjectRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, env.engine.SubmitSensorReading("SEN-001", 99, 10, 0, 0, ""), ErrInvalidProject)
	assert.ErrorIs(t, env.engine.SubmitSensorReading("", projectID, 10, 0, 0, ""), ErrInvalidSensor)
	assert.ErrorIs(t, env.engine.SubmitSensorReading("SEN-001", projectID, 0, 0, 0, ""), ErrInvalidAmount)

	// Inactive projects stop accepting readings.
	require.NoError(t, env.engine.SetProjectActive(owner, projectID, false))
	assert.ErrorIs(t, env.engine.SubmitSensorReading("SEN-001", projectID, 10, 0, 0, ""), ErrInvalidProject)
}

func TestSetProjectActiveAuthorization(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	stranger := uuid.New()
	admin := uuid.New()
	projectID, err := env.engine.RegisterProject(owner, validProjectRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, env.engine.SetProjectActive(stranger, projectID, false), ErrUnauthorized)

	require.NoError(t, env.engine.AddAdmin(env.deployer, admin))
	require.NoError(t, env.engine.SetProjectActive(admin, projectID, false))

	project, err := env.engine.GetProject(projectID)
	require.NoError(t, err)
	assert.False(t, project.Active)
}

func TestIssueCreditVerificationGating(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	projectID, err := env.engine.RegisterProject(owner, validProjectRequest())
	require.NoError(t, err)

	// Below threshold: gated.
	for i := 0; i < DefaultVerificationThreshold-1; i++ {
		env.clock.Advance(1)
		require.NoError(t, env.engine.SubmitSensorReading("SEN-001", projectID, 5, 20, 55, "h"))
	}
	_, err = env.engine.IssueCredit(owner, projectID, 100)
	assert.ErrorIs(t, err, ErrInsufficientVerification)

	// Crossing the threshold unlocks issuance.
	env.clock.Advance(1)
	require.NoError(t, env.engine.SubmitSensorReading("SEN-001", projectID, 5, 20, 55, "h"))
	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), creditID)
	assert.Equal(t, uint64(100), env.engine.BalanceOf(owner))
}

// End-to-end scenario: 1000-ton project at biodiversity 50, ten readings
// of 5g, 100-ton issuance mints exactly 100 tokens with no bonus.
func TestIssueCreditScenario(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	stranger := uuid.New()

	projectID := env.registerVerifiedProject(t, owner, validProjectRequest())

	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), creditID)
	assert.Equal(t, uint64(100), env.engine.BalanceOf(owner))

	credit, err := env.engine.GetCredit(creditID)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), credit.Amount)
	assert.Zero(t, credit.BiodiversityBonus)
	assert.Equal(t, uint64(DefaultVerificationThreshold), credit.VerificationCount)
	assert.False(t, credit.Retired)

	_, err = env.engine.IssueCredit(stranger, projectID, 10)
	assert.ErrorIs(t, err, ErrNotTokenOwner)

	stats := env.engine.Stats()
	assert.Equal(t, uint64(100), stats.TotalIssued)
	assert.Equal(t, uint64(100), stats.TotalSupply)
}

func TestBiodiversityBonus(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	req := validProjectRequest()
	req.BiodiversityScore = 80
	projectID := env.registerVerifiedProject(t, owner, req)

	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)

	// 100 + 150*100/100 tokens minted; the credit itself records 100 tons.
	assert.Equal(t, uint64(250), env.engine.BalanceOf(owner))
	credit, err := env.engine.GetCredit(creditID)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), credit.Amount)
	assert.Equal(t, uint64(150), credit.BiodiversityBonus)

	// Bonus tokens are excluded from the issued-total.
	assert.Equal(t, uint64(100), env.engine.Stats().TotalIssued)
	assert.Equal(t, uint64(250), env.engine.Stats().TotalSupply)
}

func TestBiodiversityBonusBelowThreshold(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	req := validProjectRequest()
	req.BiodiversityScore = 79
	projectID := env.registerVerifiedProject(t, owner, req)

	_, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), env.engine.BalanceOf(owner))
}

func TestRetireCreditFull(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	projectID := env.registerVerifiedProject(t, owner, validProjectRequest())
	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)

	env.clock.Advance(5)
	require.NoError(t, env.engine.RetireCredit(owner, creditID, 100))

	credit, err := env.engine.GetCredit(creditID)
	require.NoError(t, err)
	assert.True(t, credit.Retired)
	assert.Zero(t, credit.Amount)
	require.NotNil(t, credit.RetiredAt)
	assert.Equal(t, env.clock.Now(), *credit.RetiredAt)
	assert.Zero(t, env.engine.BalanceOf(owner))

	// Single retirement: nothing further succeeds against the credit.
	assert.ErrorIs(t, env.engine.RetireCredit(owner, creditID, 1), ErrCreditAlreadyRetired)
	_, err = env.engine.CreateListing(owner, creditID, 10, 1)
	assert.ErrorIs(t, err, ErrCreditAlreadyRetired)

	esg := env.engine.GetCorporateESG(owner)
	assert.Equal(t, uint64(100), esg.TotalRetired)
}

func TestRetireCreditPartial(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	projectID := env.registerVerifiedProject(t, owner, validProjectRequest())
	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)

	require.NoError(t, env.engine.RetireCredit(owner, creditID, 30))
	credit, err := env.engine.GetCredit(creditID)
	require.NoError(t, err)
	assert.False(t, credit.Retired)
	assert.Equal(t, uint64(70), credit.Amount)

	require.NoError(t, env.engine.RetireCredit(owner, creditID, 40))
	require.NoError(t, env.engine.RetireCredit(owner, creditID, 30))

	credit, err = env.engine.GetCredit(creditID)
	require.NoError(t, err)
	assert.True(t, credit.Retired)
	assert.Equal(t, uint64(100), env.engine.Stats().TotalRetired)
}

func TestRetireCreditValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	stranger := uuid.New()
	projectID := env.registerVerifiedProject(t, owner, validProjectRequest())
	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)

	assert.ErrorIs(t, env.engine.RetireCredit(owner, 99, 10), ErrCreditNotFound)
	assert.ErrorIs(t, env.engine.RetireCredit(stranger, creditID, 10), ErrNotTokenOwner)
	assert.ErrorIs(t, env.engine.RetireCredit(owner, creditID, 0), ErrInvalidAmount)
	assert.ErrorIs(t, env.engine.RetireCredit(owner, creditID, 101), ErrInsufficientBalance)

	// Tokens gone from the account block the burn even when the credit
	// record still carries the amount.
	require.NoError(t, env.engine.TransferCredits(owner, owner, stranger, 100))
	assert.ErrorIs(t, env.engine.RetireCredit(owner, creditID, 100), ErrInsufficientBalance)
}

func TestConservation(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	buyer := uuid.New()

	checkConservation := func() {
		t.Helper()
		stats := env.engine.Stats()
		total := env.engine.BalanceOf(owner) + env.engine.BalanceOf(buyer) + env.engine.BalanceOf(env.deployer)
		assert.Equal(t, stats.TotalMinted-stats.TotalBurned, total)
		assert.Equal(t, stats.TotalSupply, total)
	}

	req := validProjectRequest()
	req.BiodiversityScore = 90
	projectID := env.registerVerifiedProject(t, owner, req)
	checkConservation()

	creditID, err := env.engine.IssueCredit(owner, projectID, 200)
	require.NoError(t, err)
	checkConservation()

	require.NoError(t, env.engine.TransferCredits(owner, owner, buyer, 120))
	checkConservation()

	listingID, err := env.engine.CreateListing(owner, creditID, 7, 50)
	require.NoError(t, err)
	require.NoError(t, env.engine.PurchaseListing(buyer, listingID, 20))
	checkConservation()

	require.NoError(t, env.engine.RetireCredit(owner, creditID, 100))
	checkConservation()
}

func TestPauseGate(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	buyer := uuid.New()
	projectID := env.registerVerifiedProject(t, owner, validProjectRequest())
	creditID, err := env.engine.IssueCredit(owner, projectID, 100)
	require.NoError(t, err)
	listingID, err := env.engine.CreateListing(owner, creditID, 5, 50)
	require.NoError(t, err)

	require.NoError(t, env.engine.Pause(env.deployer))

	_, err = env.engine.RegisterProject(owner, validProjectRequest())
	assert.ErrorIs(t, err, ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.SubmitSensorReading("SEN-001", projectID, 5, 0, 0, ""), ErrMarketplacePaused)
	_, err = env.engine.IssueCredit(owner, projectID, 10)
	assert.ErrorIs(t, err, ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.RetireCredit(owner, creditID, 10), ErrMarketplacePaused)
	_, err = env.engine.CreateListing(owner, creditID, 5, 10)
	assert.ErrorIs(t, err, ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.PurchaseListing(buyer, listingID, 10), ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.TransferCredits(owner, owner, buyer, 10), ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.CancelListing(owner, listingID), ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.SetProjectActive(owner, projectID, false), ErrMarketplacePaused)
	assert.ErrorIs(t, env.engine.AddAdmin(env.deployer, uuid.New()), ErrMarketplacePaused)

	// Reads still succeed, and no state changed.
	assert.True(t, env.engine.Stats().Paused)
	assert.Equal(t, uint64(100), env.engine.BalanceOf(owner))
	listing, err := env.engine.GetListing(listingID)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), listing.Amount)
	assert.True(t, listing.Active)

	require.NoError(t, env.engine.Unpause(env.deployer))
	require.NoError(t, env.engine.TransferCredits(owner, owner, buyer, 10))
}

func TestAddAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := uuid.New()
	stranger := uuid.New()

	assert.ErrorIs(t, env.engine.AddAdmin(stranger, admin), ErrOwnerOnly)
	assert.ErrorIs(t, env.engine.AddAdmin(env.deployer, env.deployer), ErrInvalidPrincipal)

	require.NoError(t, env.engine.AddAdmin(env.deployer, admin))
	assert.True(t, env.engine.IsAdmin(admin))

	// Pause rights follow admin status; admins cannot grant them onward.
	assert.ErrorIs(t, env.engine.AddAdmin(admin, stranger), ErrOwnerOnly)
	require.NoError(t, env.engine.Pause(admin))
	assert.ErrorIs(t, env.engine.Pause(stranger), ErrUnauthorized)

	// Grants wait out the pause; lifting it stays possible throughout.
	assert.ErrorIs(t, env.engine.AddAdmin(env.deployer, stranger), ErrMarketplacePaused)
	require.NoError(t, env.engine.Unpause(env.deployer))
	require.NoError(t, env.engine.AddAdmin(env.deployer, stranger))
	assert.True(t, env.engine.IsAdmin(stranger))
}

func TestESGScoreBounds(t *testing.T) {
	assert.Equal(t, uint32(0), esgScore(0, 0))
	assert.Equal(t, uint32(0), esgScore(0, 500))
	assert.Equal(t, uint32(50), esgScore(200, 100))
	assert.Equal(t, uint32(33), esgScore(3, 1))
	assert.Equal(t, uint32(100), esgScore(100, 100))
	assert.Equal(t, uint32(100), esgScore(100, 250))
}
