package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

var columns = []string{
	"id", "key", "version", "candidate", "opponent", "base", "location", "age", "gender",
	"tags", "skipped_sources", "row_count", "column_count", "created_at",
}

type AnalysisRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo *AnalysisRepository
	now  time.Time
}

func (s *AnalysisRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)

	s.now = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	s.repo = NewAnalysisRepository(postgres.NewConnectionWithDB(s.db, logging.NewNopLogger()), nil)
	s.repo.now = func() time.Time { return s.now }
}

func (s *AnalysisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *AnalysisRepoTestSuite) TestSave_AssignsIDAndTimestamp() {
	meta := &analysis.Metadata{
		Key:       "candidate_analysis_jane_doe_ohio.json",
		Version:   "1",
		Candidate: "Jane Doe",
		Opponent:  "John Roe",
		Base:      "right",
		Location:  "Ohio",
		Tags:      []string{"economy", "healthcare"},
		Rows:      120,
		Columns:   14,
	}

	s.mock.ExpectQuery("INSERT INTO analyses .* ON CONFLICT \\(key\\) DO UPDATE").
		WithArgs(sqlmock.AnyArg(), meta.Key, "1", "Jane Doe", "John Roe", "right", "Ohio", "", "",
			[]byte(`["economy","healthcare"]`), []byte(`[]`), 120, 14, s.now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("6f1c2b8e-0000-4000-8000-000000000001"))

	s.Require().NoError(s.repo.Save(context.Background(), meta))
	s.Equal("6f1c2b8e-0000-4000-8000-000000000001", meta.ID)
	s.Equal(s.now, meta.CreatedAt)
}

func (s *AnalysisRepoTestSuite) TestSave_RequiresKey() {
	err := s.repo.Save(context.Background(), &analysis.Metadata{})
	s.True(errors.IsCode(err, errors.ErrCodeValidation))
}

func (s *AnalysisRepoTestSuite) TestSave_DatabaseError() {
	s.mock.ExpectQuery("INSERT INTO analyses").WillReturnError(stderrors.New("connection reset"))

	err := s.repo.Save(context.Background(), &analysis.Metadata{Key: "k", ID: "id-1", CreatedAt: s.now})
	s.True(errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func (s *AnalysisRepoTestSuite) TestFindByKey_Found() {
	s.mock.ExpectQuery("SELECT id, key, .* FROM analyses WHERE key = \\$1").
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"id-1", "k1", "2", "Jane Doe", "John Roe", "left", "Ohio", "35_and_younger", "female",
			[]byte(`["economy"]`), []byte(`["healthcare"]`), 10, 12, s.now,
		))

	m, err := s.repo.FindByKey(context.Background(), "k1")
	s.Require().NoError(err)
	s.Equal("Jane Doe", m.Candidate)
	s.Equal([]string{"economy"}, m.Tags)
	s.Equal([]string{"healthcare"}, m.Skipped)
	s.Equal(10, m.Rows)
	s.Equal("female", m.Gender)
}

func (s *AnalysisRepoTestSuite) TestFindByKey_NotFound() {
	s.mock.ExpectQuery("SELECT .* FROM analyses WHERE key = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.repo.FindByKey(context.Background(), "missing")
	s.True(errors.IsCode(err, errors.ErrCodeAnalysisNotFound))
}

func (s *AnalysisRepoTestSuite) TestLatest_Empty() {
	s.mock.ExpectQuery("SELECT .* FROM analyses ORDER BY created_at DESC LIMIT 1").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.repo.Latest(context.Background())
	s.True(errors.IsCode(err, errors.ErrCodeAnalysisNotFound))
}

func (s *AnalysisRepoTestSuite) TestList_DefaultLimit() {
	s.mock.ExpectQuery("SELECT .* FROM analyses ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(defaultListLimit).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-2", "k2", "1", "B", "", "center", "Texas", "", "", []byte(`[]`), []byte(`[]`), 5, 9, s.now).
			AddRow("id-1", "k1", "1", "A", "", "left", "Ohio", "", "", []byte(`[]`), nil, 4, 9, s.now.Add(-time.Hour)))

	list, err := s.repo.List(context.Background(), 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("k2", list[0].Key)
	s.Empty(list[1].Skipped)
}

func (s *AnalysisRepoTestSuite) TestList_CorruptTags() {
	s.mock.ExpectQuery("SELECT .* FROM analyses").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-1", "k1", "1", "A", "", "left", "Ohio", "", "", []byte(`{`), []byte(`[]`), 4, 9, s.now))

	_, err := s.repo.List(context.Background(), 3)
	s.True(errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestAnalysisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AnalysisRepoTestSuite))
}

//Personal.AI order the ending
