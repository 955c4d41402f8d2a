package tagging

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/nzvengeance/gw2style/internal/gw2"
	"github.com/nzvengeance/gw2style/internal/models"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CharacterCore(ctx context.Context, name, apiKey string) (*models.Character, error) {
	args := m.Called(name, apiKey)
	ch, _ := args.Get(0).(*models.Character)
	return ch, args.Error(1)
}

func (m *mockAPI) EquipmentTabs(ctx context.Context, name, apiKey string) ([]models.EquipmentTab, error) {
	args := m.Called(name, apiKey)
	tabs, _ := args.Get(0).([]models.EquipmentTab)
	return tabs, args.Error(1)
}

func (m *mockAPI) Skins(ctx context.Context, ids []int) ([]models.Skin, error) {
	args := m.Called(ids)
	skins, _ := args.Get(0).([]models.Skin)
	return skins, args.Error(1)
}

func (m *mockAPI) Colors(ctx context.Context, ids []int) ([]models.Dye, error) {
	args := m.Called(ids)
	dyes, _ := args.Get(0).([]models.Dye)
	return dyes, args.Error(1)
}

func intPtr(v int) *int { return &v }

type DeriverTestSuite struct {
	suite.Suite
	api     *mockAPI
	deriver *Deriver
	ctx     context.Context
}

func TestDeriverSuite(t *testing.T) {
	suite.Run(t, new(DeriverTestSuite))
}

func (s *DeriverTestSuite) SetupTest() {
	s.api = new(mockAPI)
	s.deriver = NewDeriver(s.api)
	s.ctx = context.Background()
}

func (s *DeriverTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *DeriverTestSuite) TestFetchEquipmentTabSelectsByName() {
	s.api.On("EquipmentTabs", "Rytlock", "key").Return([]models.EquipmentTab{
		{Tab: 1, Name: "Raid", Equipment: []models.EquipmentItem{{Slot: "Helm", ID: 10}}},
		{Tab: 2, Name: "Fashion", Equipment: []models.EquipmentItem{{Slot: "Coat", ID: 20}}},
	}, nil)

	items, err := s.deriver.FetchEquipmentTab(s.ctx, "Rytlock", "Fashion", "key")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Assert().Equal("Coat", items[0].Slot)
}

func (s *DeriverTestSuite) TestFetchEquipmentTabMissingIsEmpty() {
	s.api.On("EquipmentTabs", "Rytlock", "key").Return([]models.EquipmentTab{{Tab: 1, Name: "Raid"}}, nil)

	items, err := s.deriver.FetchEquipmentTab(s.ctx, "Rytlock", "Nope", "key")
	s.Assert().NoError(err)
	s.Assert().Empty(items)
}

func (s *DeriverTestSuite) TestResolveSkipsNullDyes() {
	items := []models.EquipmentItem{
		{Slot: "Coat", ID: 1, Skin: intPtr(100), Dyes: []*int{intPtr(5), nil, intPtr(7)}},
		{Slot: "Boots", ID: 2, Skin: intPtr(100), Dyes: []*int{intPtr(5)}},
	}
	s.api.On("Skins", []int{100}).Return([]models.Skin{{ID: 100, Name: "Phoenix Coat"}}, nil)
	s.api.On("Colors", []int{5, 7}).Return([]models.Dye{{ID: 5, Name: "Teal Dye"}, {ID: 7, Name: "Maroon"}}, nil)

	refs, err := s.deriver.ResolveSkinsAndDyes(s.ctx, items)
	s.Require().NoError(err)
	s.Assert().Len(refs.Skins, 1)
	s.Assert().Len(refs.Dyes, 2)
}

func (s *DeriverTestSuite) TestResolveWithNothingToLookUp() {
	refs, err := s.deriver.ResolveSkinsAndDyes(s.ctx, []models.EquipmentItem{{Slot: "Amulet", ID: 3}})
	s.Require().NoError(err)
	s.Assert().Empty(refs.Skins)
	s.Assert().Empty(refs.Dyes)
	s.api.AssertNotCalled(s.T(), "Skins", mock.Anything)
	s.api.AssertNotCalled(s.T(), "Colors", mock.Anything)
}

func (s *DeriverTestSuite) TestGenerate() {
	s.api.On("CharacterCore", "Rytlock", "key").Return(&models.Character{Name: "Rytlock", Race: "Charr", Gender: "Male", Profession: "Revenant"}, nil)
	s.api.On("EquipmentTabs", "Rytlock", "key").Return([]models.EquipmentTab{{
		Name: "Fashion",
		Equipment: []models.EquipmentItem{
			{Slot: "Helm", ID: 1, Skin: intPtr(10), Dyes: []*int{intPtr(5), nil}},
			{Slot: "WeaponA1", ID: 2, Skin: intPtr(11)},
		},
	}}, nil)
	s.api.On("Skins", []int{10, 11}).Return([]models.Skin{
		{ID: 10, Name: "Phoenix Helm", Flags: []string{"Gemstore"}},
		{ID: 11, Name: "Mad King's Halloween Sword"},
	}, nil)
	s.api.On("Colors", []int{5}).Return([]models.Dye{{ID: 5, Name: "Teal Dye"}}, nil)

	result, err := s.deriver.Generate(s.ctx, "Rytlock", "Fashion", "key")
	s.Require().NoError(err)

	s.Assert().Equal([]string{
		"Charr", "Male", "Revenant",
		"Phoenix Helm", "Gems Store",
		"Mad King's Halloween Sword", "Halloween",
		"Blue dyes",
	}, result.Tags.Slice())
	s.Assert().Equal("Charr", result.Categorized.Race)
	s.Assert().Equal([]string{"Gems Store", "Halloween"}, result.Categorized.Sources)
	s.Assert().Equal([]string{"Phoenix Helm", "Mad King's Halloween Sword"}, result.Categorized.Skins)
}

func (s *DeriverTestSuite) TestGenerateEmptyTabYieldsCharacterTagsOnly() {
	s.api.On("CharacterCore", "Rytlock", "key").Return(&models.Character{Race: "Charr", Gender: "Male", Profession: "Revenant"}, nil)
	s.api.On("EquipmentTabs", "Rytlock", "key").Return([]models.EquipmentTab{{Name: "Fashion"}}, nil)

	result, err := s.deriver.Generate(s.ctx, "Rytlock", "Fashion", "key")
	s.Require().NoError(err)
	s.Assert().Equal([]string{"Charr", "Male", "Revenant"}, result.Tags.Slice())
}

func (s *DeriverTestSuite) TestGenerateAbortsOnUpstreamFailure() {
	upstream := &gw2.UpstreamError{Endpoint: "/v2/skins", StatusCode: http.StatusServiceUnavailable, Message: "down"}
	s.api.On("CharacterCore", "Rytlock", "key").Return(&models.Character{Race: "Charr"}, nil)
	s.api.On("EquipmentTabs", "Rytlock", "key").Return([]models.EquipmentTab{{
		Name:      "Fashion",
		Equipment: []models.EquipmentItem{{Slot: "Helm", ID: 1, Skin: intPtr(10)}},
	}}, nil)
	s.api.On("Skins", []int{10}).Return(nil, upstream)

	result, err := s.deriver.Generate(s.ctx, "Rytlock", "Fashion", "key")
	s.Assert().Nil(result)
	s.Require().Error(err)
	s.Assert().ErrorAs(err, &upstream)
}

func (s *DeriverTestSuite) TestGenerateRequiresInput() {
	_, err := s.deriver.Generate(s.ctx, "", "Fashion", "key")
	s.Assert().ErrorIs(err, ErrMissingInput)

	_, err = s.deriver.Generate(s.ctx, "Rytlock", "Fashion", "")
	s.Assert().ErrorIs(err, ErrMissingInput)
}

func (s *DeriverTestSuite) TestCollectIDs() {
	skins, dyes := CollectIDs([]models.EquipmentItem{
		{Skin: intPtr(3), Dyes: []*int{intPtr(5), nil, intPtr(7)}},
		{Skin: intPtr(3), Dyes: []*int{intPtr(7), intPtr(9)}},
		{},
	})
	s.Assert().Equal([]int{3}, skins)
	s.Assert().Equal([]int{5, 7, 9}, dyes)
}
