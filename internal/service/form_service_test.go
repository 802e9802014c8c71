package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/picker"
)

type FormServiceSuite struct {
	ServiceSuite
}

func TestFormServiceSuite(t *testing.T) {
	suite.Run(t, new(FormServiceSuite))
}

func (s *FormServiceSuite) TestUnknownFormAndSession() {
	_, err := s.forms.Open(s.ctx, "vehicle", 0)
	s.ErrorIs(err, ErrUnknownForm)

	_, err = s.forms.State("missing")
	s.ErrorIs(err, ErrFormNotFound)
}

func (s *FormServiceSuite) TestCardFormPrefillsFromPicker() {
	st, err := s.forms.Open(s.ctx, form.CardIssueForm, 0)
	s.Require().NoError(err)
	s.Require().NotNil(st.Picker)
	s.Equal(picker.StateNoQuery, st.Picker.State)

	st, err = s.forms.SearchCitizens(s.ctx, st.ID, "29012345678901")
	s.Require().NoError(err)
	s.Equal(picker.StateResults, st.Picker.State)
	s.Require().Len(st.Picker.Matches, 1)

	st, err = s.forms.SelectCitizen(st.ID, st.Picker.Matches[0].ID)
	s.Require().NoError(err)
	s.Equal(picker.StateSelected, st.Picker.State)
	s.Empty(st.Picker.Matches)
	s.Equal("Comprehensive", st.Values["insuranceType"])
	s.Equal("Ahmed Mohamed", st.Values["citizenName"])
	s.Equal("1", st.Values["citizenId"])

	st, err = s.forms.SearchCitizens(s.ctx, st.ID, "nobody")
	s.Require().NoError(err)
	s.Equal(picker.StateNoMatch, st.Picker.State)
}

func (s *FormServiceSuite) TestCardFormSubmitFailsForHolderThenSucceeds() {
	st, err := s.forms.Open(s.ctx, form.CardIssueForm, 1)
	s.Require().NoError(err)
	s.Equal("Ahmed Mohamed", st.Values["citizenName"])

	st, err = s.forms.Submit(s.ctx, st.ID)
	s.Require().Error(err)
	s.Equal(form.StatusFailed, st.Submission.Status)
	s.Equal("cardManagement.alreadyHasCard", st.Errors["citizenId"].Key)

	st, err = s.forms.SearchCitizens(s.ctx, st.ID, "fatima")
	s.Require().NoError(err)
	s.Require().Len(st.Picker.Matches, 1)
	st, err = s.forms.SelectCitizen(st.ID, st.Picker.Matches[0].ID)
	s.Require().NoError(err)

	st, err = s.forms.Submit(s.ctx, st.ID)
	s.Require().NoError(err)
	s.Equal(form.StatusSucceeded, st.Submission.Status)
	s.NotZero(st.Submission.ID)

	id := st.ID
	s.Eventually(func() bool {
		st, err := s.forms.State(id)
		return err == nil && st.NavigateTo != nil && st.NavigateTo.Path == "/cards"
	}, time.Second, 10*time.Millisecond)
}

func (s *FormServiceSuite) TestCitizenEditForm() {
	st, err := s.forms.Open(s.ctx, form.CitizenForm, 2)
	s.Require().NoError(err)
	s.Nil(st.Picker)
	s.Equal("30112345678902", st.Values["nationalId"])
	s.True(st.StepValid)

	// an untouched non-empty field does not block the step
	st, err = s.forms.SetField(st.ID, "nationalId", "3011234567890")
	s.Require().NoError(err)
	s.True(st.StepValid)
	st, err = s.forms.BlurField(st.ID, "nationalId")
	s.Require().NoError(err)
	s.False(st.StepValid)
	s.Equal("citizens.nationalId.digits", st.Errors["nationalId"].Key)

	st, err = s.forms.Advance(st.ID)
	s.Require().NoError(err)
	s.Equal(0, st.Step)

	_, err = s.forms.SetField(st.ID, "nationalId", "30112345678902")
	s.Require().NoError(err)
	for i := 0; i < 2; i++ {
		st, err = s.forms.Advance(st.ID)
		s.Require().NoError(err)
	}
	s.Equal(2, st.Step)

	_, err = s.forms.SetField(st.ID, "address", "9 Tahrir Square, Cairo")
	s.Require().NoError(err)
	st, err = s.forms.Submit(s.ctx, st.ID)
	s.Require().NoError(err)
	s.Equal(uint(2), st.Submission.ID)

	sara, err := s.citizens.Get(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal("9 Tahrir Square, Cairo", sara.Address)
}

func (s *FormServiceSuite) TestInstitutionListItems() {
	st, err := s.forms.Open(s.ctx, form.InstitutionForm, 1)
	s.Require().NoError(err)
	s.Len(st.Lists["services"], 5)

	st, err = s.forms.AddItem(st.ID, "services", "Oncology")
	s.Require().NoError(err)
	s.Equal("Oncology", st.Lists["services"][5])

	st, err = s.forms.RemoveItem(st.ID, "services", 0)
	s.Require().NoError(err)
	s.Equal("Surgery", st.Lists["services"][0])

	_, err = s.forms.RemoveItem(st.ID, "services", 10)
	s.ErrorIs(err, form.ErrIndexOutOfRange)

	_, err = s.forms.SearchCitizens(context.Background(), st.ID, "sara")
	s.ErrorIs(err, ErrNoPicker)
}

func (s *FormServiceSuite) TestCloseRequestsBackNavigation() {
	st, err := s.forms.Open(s.ctx, form.CitizenForm, 0)
	s.Require().NoError(err)

	st, err = s.forms.Close(st.ID)
	s.Require().NoError(err)
	s.Require().NotNil(st.NavigateTo)
	s.True(st.NavigateTo.Back)

	_, err = s.forms.State(st.ID)
	s.ErrorIs(err, ErrFormNotFound)
}

func (s *FormServiceSuite) TestSweepDropsIdleSessions() {
	idle, err := s.forms.Open(s.ctx, form.CitizenForm, 0)
	s.Require().NoError(err)
	s.clock = fixedNow.Add(30 * time.Minute)
	fresh, err := s.forms.Open(s.ctx, form.CitizenForm, 0)
	s.Require().NoError(err)

	s.clock = fixedNow.Add(61 * time.Minute)
	s.Equal(1, s.forms.Sweep())

	_, err = s.forms.State(idle.ID)
	s.ErrorIs(err, ErrFormNotFound)
	_, err = s.forms.State(fresh.ID)
	s.NoError(err)
}
