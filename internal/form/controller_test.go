package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
	gone  chan string
}

func newRecordingNavigator() *recordingNavigator {
	return &recordingNavigator{gone: make(chan string, 1)}
}

func (n *recordingNavigator) Go(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
	n.gone <- path
}

func (n *recordingNavigator) Back() {}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func validCitizen() Values {
	return Values{
		"nationalId":       "29012345678901",
		"name":             "Ahmed Mohamed",
		"dateOfBirth":      "1990-05-15",
		"gender":           "Male",
		"address":          "Cairo, Egypt",
		"phone":            "+20 123 456 7890",
		"email":            "ahmed.mohamed@example.com",
		"emergencyContact": "Mona Mohamed",
		"emergencyPhone":   "+20 123 456 7899",
		"bloodType":        "A+",
		"insuranceType":    "Comprehensive",
	}
}

type ControllerSuite struct {
	suite.Suite
	nav *recordingNavigator
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.nav = newRecordingNavigator()
}

func (s *ControllerSuite) open(schema *Schema, sub Submitter, values Values) *Controller {
	c := New(schema, sub, Data{Values: values},
		WithClock(func() time.Time { return fixedNow }),
		WithNavigator(s.nav),
		WithRedirectDelay(0),
	)
	s.T().Cleanup(c.Close)
	return c
}

func okSubmitter(id uint) Submitter {
	return SubmitterFunc(func(context.Context, Data) (Outcome, error) {
		return Outcome{ID: id}, nil
	})
}

func singleFieldSchema(rules ...Rule) *Schema {
	return &Schema{
		Name:   "probe",
		Steps:  []string{"one", "two"},
		Fields: []Field{{Name: "code", Step: 0, Rules: rules}, {Name: "note", Step: 1, Optional: true}},
	}
}

// TestStepValidity pins the asymmetric rule: untouched fields only need a
// value, touched fields must be free of violations.
func (s *ControllerSuite) TestStepValidity() {
	s.Run("empty untouched field blocks the step", func() {
		c := s.open(singleFieldSchema(MinLength(5, "min")), okSubmitter(1), nil)
		s.False(c.StepValid())
	})

	s.Run("non-empty untouched field passes even if a rule would fail", func() {
		c := s.open(singleFieldSchema(MinLength(5, "min")), okSubmitter(1), nil)
		s.Require().NoError(c.SetField("code", "abc"))
		s.True(c.StepValid())
	})

	s.Run("touched field with a failing rule blocks the step", func() {
		c := s.open(singleFieldSchema(MinLength(5, "min")), okSubmitter(1), nil)
		s.Require().NoError(c.SetField("code", "abc"))
		s.Require().NoError(c.BlurField("code"))
		s.False(c.StepValid())

		s.Require().NoError(c.SetField("code", "abcdef"))
		s.True(c.StepValid())
	})

	s.Run("errors are only shown for touched fields", func() {
		c := s.open(singleFieldSchema(MinLength(5, "min")), okSubmitter(1), nil)
		s.Require().NoError(c.SetField("code", "abc"))
		s.Empty(c.State().Errors)

		s.Require().NoError(c.BlurField("code"))
		state := c.State()
		s.Equal("min", state.Errors["code"].Key)
		s.Equal([]string{"5"}, state.Errors["code"].Params)
	})

	s.Run("unknown field", func() {
		c := s.open(singleFieldSchema(), okSubmitter(1), nil)
		s.ErrorIs(c.SetField("nope", "x"), ErrUnknownField)
		s.ErrorIs(c.BlurField("nope"), ErrUnknownField)
	})
}

func (s *ControllerSuite) TestNavigationBounds() {
	c := s.open(CitizenSchema(), okSubmitter(1), nil)

	s.False(c.Retreat())
	s.Equal(0, c.Step())

	s.False(c.Advance(), "empty personal step must not advance")
	s.Equal(0, c.Step())

	for name, value := range validCitizen() {
		s.Require().NoError(c.SetField(name, value))
	}
	s.True(c.Advance())
	s.True(c.Advance())
	s.Equal(2, c.Step())
	s.False(c.Advance(), "last step is a ceiling")
	s.Equal(2, c.Step())

	s.True(c.Retreat())
	s.True(c.Retreat())
	s.False(c.Retreat())
	s.Equal(0, c.Step())
}

func (s *ControllerSuite) TestAdvanceBlockedBySurfacedError() {
	c := s.open(CitizenSchema(), okSubmitter(1), validCitizen())
	s.Require().NoError(c.SetField("nationalId", "2901234567890"))
	s.Require().NoError(c.BlurField("nationalId"))

	s.False(c.Advance())
	s.Equal(0, c.Step())
	state := c.State()
	s.Equal("citizens.nationalId.digits", state.Errors["nationalId"].Key)
	s.False(state.CanAdvance)
}

func (s *ControllerSuite) TestSubmitRejectsThirteenDigitNationalID() {
	called := false
	sub := SubmitterFunc(func(context.Context, Data) (Outcome, error) {
		called = true
		return Outcome{ID: 1}, nil
	})
	values := validCitizen()
	values["nationalId"] = "2901234567890"
	c := s.open(CitizenSchema(), sub, values)

	// untouched non-empty values let the user walk to the last step
	s.True(c.Advance())
	s.True(c.Advance())

	_, err := c.Submit()
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal(Violation{Key: "citizens.nationalId.digits", Params: []string{"14"}}, verr.Fields["nationalId"])
	s.Len(verr.Fields, 1)
	s.False(called)
	s.Equal(StatusIdle, c.State().Submission.Status)
	s.Equal(2, c.Step())
}

func (s *ControllerSuite) TestSubmitOnlyFromLastStep() {
	c := s.open(CitizenSchema(), okSubmitter(1), validCitizen())
	_, err := c.Submit()
	s.ErrorIs(err, ErrNotLastStep)
}

func (s *ControllerSuite) TestSubmitSuccessNavigates() {
	c := s.open(CitizenSchema(), okSubmitter(42), validCitizen())
	c.Advance()
	c.Advance()

	sub, err := c.Submit()
	s.Require().NoError(err)
	outcome, err := sub.Wait(context.Background())
	s.Require().NoError(err)
	s.Equal(uint(42), outcome.ID)

	select {
	case path := <-s.nav.gone:
		s.Equal("/citizens", path)
	case <-time.After(time.Second):
		s.Fail("navigation was not requested")
	}

	state := c.State()
	s.Equal(StatusSucceeded, state.Submission.Status)
	s.Equal(uint(42), state.Submission.ID)
	s.False(state.CanSubmit)

	_, err = c.Submit()
	s.ErrorIs(err, ErrAlreadySubmitted)
}

func (s *ControllerSuite) TestSubmitFailureKeepsValuesAndRetries() {
	attempts := 0
	sub := SubmitterFunc(func(context.Context, Data) (Outcome, error) {
		attempts++
		if attempts == 1 {
			return Outcome{}, errors.New("database unavailable")
		}
		return Outcome{ID: 7}, nil
	})
	c := s.open(InstitutionSchema(), sub, Values{
		"name":          "Cairo Central Hospital",
		"type":          "Hospital",
		"licenseNumber": "LIC-2023-001",
		"address":       "Downtown, Cairo",
		"phone":         "+20 2 2755 0000",
		"email":         "info@cairocentralhospital.com",
		"contactPerson": "Dr. Ahmed Mahmoud",
		"licenseExpiry": "2027-01-14",
	})

	first, err := c.Submit()
	s.Require().NoError(err)
	_, err = first.Wait(context.Background())
	s.ErrorIs(err, ErrSubmissionFailed)

	state := c.State()
	s.Equal(StatusFailed, state.Submission.Status)
	s.True(state.Submission.Retryable)
	s.Equal("Cairo Central Hospital", state.Values["name"])
	s.True(state.CanSubmit)

	second, err := c.Submit()
	s.Require().NoError(err)
	outcome, err := second.Wait(context.Background())
	s.Require().NoError(err)
	s.Equal(uint(7), outcome.ID)
	s.Equal(2, attempts)
}

func (s *ControllerSuite) TestServerSideViolationsAreSurfacedOnFields() {
	sub := SubmitterFunc(func(context.Context, Data) (Outcome, error) {
		return Outcome{}, &ValidationError{Fields: map[string]Violation{
			"nationalId": {Key: "citizens.nationalId.taken"},
		}}
	})
	c := s.open(CitizenSchema(), sub, validCitizen())
	c.Advance()
	c.Advance()

	pending, err := c.Submit()
	s.Require().NoError(err)
	_, err = pending.Wait(context.Background())
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)

	state := c.State()
	s.Equal("citizens.nationalId.taken", state.Errors["nationalId"].Key)
	s.Equal(StatusFailed, state.Submission.Status)
	s.False(state.Submission.Retryable)
}

func (s *ControllerSuite) TestCloseCancelsPendingSubmission() {
	started := make(chan struct{})
	sub := SubmitterFunc(func(ctx context.Context, _ Data) (Outcome, error) {
		close(started)
		<-ctx.Done()
		return Outcome{}, ctx.Err()
	})
	c := s.open(CitizenSchema(), sub, validCitizen())
	c.Advance()
	c.Advance()

	pending, err := c.Submit()
	s.Require().NoError(err)
	<-started

	_, err = c.Submit()
	s.ErrorIs(err, ErrSubmissionPending)

	c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = pending.Wait(ctx)
	s.ErrorIs(err, ErrSubmissionCancelled)
	s.Equal(StatusCancelled, c.State().Submission.Status)

	_, err = c.Submit()
	s.ErrorIs(err, ErrClosed)
	s.Empty(s.nav.paths)
}

func (s *ControllerSuite) TestListItems() {
	c := s.open(InstitutionSchema(), okSubmitter(1), nil)

	added, err := c.AddItem("services", "  Surgery ")
	s.Require().NoError(err)
	s.True(added)
	added, err = c.AddItem("services", "   ")
	s.Require().NoError(err)
	s.False(added)
	_, _ = c.AddItem("services", "Cardiology")
	_, _ = c.AddItem("services", "Surgery")

	s.Equal([]string{"Surgery", "Cardiology", "Surgery"}, c.State().Lists["services"])

	s.Require().NoError(c.RemoveItem("services", 0))
	s.Equal([]string{"Cardiology", "Surgery"}, c.State().Lists["services"])
	s.ErrorIs(c.RemoveItem("services", 5), ErrIndexOutOfRange)

	_, err = c.AddItem("name", "x")
	s.ErrorIs(err, ErrNotListField)
	s.ErrorIs(c.SetField("services", "x"), ErrListField)
}

func (s *ControllerSuite) TestDefaults() {
	c := s.open(CardIssueSchema(), okSubmitter(1), nil)
	s.Equal("5", c.State().Values["validityYears"])

	citizen := s.open(CitizenSchema(), okSubmitter(1), nil)
	s.Equal("Basic", citizen.State().Values["insuranceType"])
}
