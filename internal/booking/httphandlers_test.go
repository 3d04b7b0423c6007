package booking

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"appointment-booking/internal/auth"
	"appointment-booking/internal/configs"
	"appointment-booking/internal/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type emptyWriter struct{}

func (e emptyWriter) Write(p []byte) (n int, err error) {
	return 0, nil
}

var logger = log.New(&emptyWriter{}, "", log.LstdFlags)

type mockAuthorizer struct {
	mockValidateToken        func(ctx context.Context, token string) (*auth.User, error)
	mockRefreshTokens        func(ctx context.Context, tokens auth.Tokens) (*auth.Tokens, error)
	mockGetAuthenticatedUser func(ctx context.Context) (auth.User, error)
}

func (m mockAuthorizer) ValidateToken(ctx context.Context, token string) (*auth.User, error) {
	return m.mockValidateToken(ctx, token)
}

func (m mockAuthorizer) RefreshTokens(ctx context.Context, tokens auth.Tokens) (*auth.Tokens, error) {
	return m.mockRefreshTokens(ctx, tokens)
}

func (m mockAuthorizer) GetAuthenticatedUser(ctx context.Context) (auth.User, error) {
	return m.mockGetAuthenticatedUser(ctx)
}

func mockPatientUser() *auth.User {
	return &auth.User{
		ID:    1,
		UUID:  uuid.UUID{},
		Email: "patient@clinic.com",
		Role:  auth.PatientRole,
	}
}

func mockDoctorUser() *auth.User {
	return &auth.User{
		ID:    2,
		UUID:  uuid.UUID{},
		Email: "doctor@clinic.com",
		Role:  auth.DoctorRole,
	}
}

func patientAuthorizer() mockAuthorizer {
	return mockAuthorizer{
		mockValidateToken: func(ctx context.Context, token string) (*auth.User, error) {
			return mockPatientUser(), nil
		},
		mockGetAuthenticatedUser: func(ctx context.Context) (auth.User, error) {
			return *mockPatientUser(), nil
		},
	}
}

func doctorAuthorizer() mockAuthorizer {
	return mockAuthorizer{
		mockValidateToken: func(ctx context.Context, token string) (*auth.User, error) {
			return mockDoctorUser(), nil
		},
		mockGetAuthenticatedUser: func(ctx context.Context) (auth.User, error) {
			return *mockDoctorUser(), nil
		},
	}
}

func doctorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "uuid", "user_id", "name", "email", "specialty", "availability"})
}

func patientRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "uuid", "user_id", "name", "email"})
}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "uuid", "doctor_id", "patient_id", "date", "reason", "status", "doctor_message", "rejection_message"})
}

func withFindPatientByUserIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findPatientByUserIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindPatientByUserIDError() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findPatientByUserIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrConnDone)
	}
}

func withFindDoctorByUUIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindDoctorByUUIDError() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrConnDone)
	}
}

func withFindDoctorByIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindDoctorByUserIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUserIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListDoctorsResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDoctorsQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListDoctorsError() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDoctorsQuery)).WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrConnDone)
	}
}

func withFindAppointmentByUUIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findAppointmentByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindPatientDayAppointmentResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findPatientDayAppointmentQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindApprovedInWindowResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findApprovedInWindowQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withInsertAppointmentResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(insertAppointmentQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withUpdateAppointmentScheduleResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(updateAppointmentScheduleQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withApproveCascadeResult(cascaded int64) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectBegin()
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(approveAppointmentQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(cascadeRejectQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, cascaded))
		dbConn.SQLMock.ExpectCommit()
	}
}

func withRejectAppointmentResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(rejectAppointmentQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withSweepExpiredResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(sweepExpiredQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withListByPatientResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listByPatientQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListByPatientStatusResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listByPatientStatusQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListByDoctorResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listByDoctorQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListApprovedByDoctorResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listApprovedByDoctorQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withCountByPatientStatusResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countByPatientStatusQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withCountByDoctorStatusResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countByDoctorStatusQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withCountByDoctorStatusError() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countByDoctorStatusQuery)).WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrConnDone)
	}
}

func withFindUpcomingByPatientResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findUpcomingByPatientQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindUpcomingByDoctorResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findUpcomingByDoctorQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

const allWeekdays = "0,1,2,3,4,5,6"

func TestListDoctors(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		config        configs.Config
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		query         string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should list the doctors matching the query",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withListDoctorsResult(doctorRows().
						AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", "0,2").
						AddRow(2, uuid.UUID{}, 3, "Jane Roe", "jane@clinic.com", "Cardiology", "1,3")),
				},
				query: "cardio",
			},
			want: http.StatusOK,
		},
		{
			name: "should list no doctors when none match the query",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withListDoctorsResult(doctorRows()),
				},
				query: "dermato",
			},
			want: http.StatusOK,
		},
		{
			name: "should not list the doctors without a token",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "should not list the doctors due to a database error",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withListDoctorsError(),
				},
			},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/doctors?q=%s", tt.args.query), nil)

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestGetDoctor(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		config        configs.Config
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		doctorUUID    string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should get the doctor with its approved appointments",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUUIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", "0,2")),
					withListApprovedByDoctorResult(appointmentRows().AddRow(1, uuid.UUID{}, 1, 1, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "checkup", "APPROVED", "see you", "")),
				},
				doctorUUID: uuid.UUID{}.String(),
			},
			want: http.StatusOK,
		},
		{
			name: "should not get an unknown doctor",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUUIDResult(doctorRows()),
				},
				doctorUUID: uuid.UUID{}.String(),
			},
			want: http.StatusNotFound,
		},
		{
			name: "should not get the doctor because the given UUID is wrong",
			args: args{
				config:     config,
				dbConn:     mock.MustCreateConnectionMock(),
				mockAuth:   patientAuthorizer(),
				tokens:     auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				doctorUUID: "not-a-uuid",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not get the doctor due to a database error",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUUIDError(),
				},
				doctorUUID: uuid.UUID{}.String(),
			},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/doctors/%s", tt.args.doctorUUID), nil)

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestCreateAppointment(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	futureDate := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	pastDate := time.Now().Add(-48 * time.Hour).Format(time.RFC3339)
	type args struct {
		config        configs.Config
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		body          string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should create the appointment request",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withFindDoctorByUUIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withFindPatientDayAppointmentResult(appointmentRows()),
					withFindApprovedInWindowResult(appointmentRows()),
					withInsertAppointmentResult(sqlmock.NewResult(1, 1)),
				},
				body: fmt.Sprintf(`{"doctor_uuid":%q,"date":%q,"reason":"checkup"}`, "11111111-1111-1111-1111-111111111111", futureDate),
			},
			want: http.StatusCreated,
		},
		{
			name: "should not create the appointment request without a token",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				body:     fmt.Sprintf(`{"doctor_uuid":%q,"date":%q,"reason":"checkup"}`, "11111111-1111-1111-1111-111111111111", futureDate),
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "should not create the appointment request for a doctor account",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				body:     fmt.Sprintf(`{"doctor_uuid":%q,"date":%q,"reason":"checkup"}`, "11111111-1111-1111-1111-111111111111", futureDate),
			},
			want: http.StatusForbidden,
		},
		{
			name: "should not create the appointment request with a malformed body",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				body:     "{",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not create the appointment request without a reason",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				body:     fmt.Sprintf(`{"doctor_uuid":%q,"date":%q}`, "11111111-1111-1111-1111-111111111111", futureDate),
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not create the appointment request for a past date",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withFindDoctorByUUIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
				},
				body: fmt.Sprintf(`{"doctor_uuid":%q,"date":%q,"reason":"checkup"}`, "11111111-1111-1111-1111-111111111111", pastDate),
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not create the appointment request on an already booked day",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withFindDoctorByUUIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withFindPatientDayAppointmentResult(appointmentRows().AddRow(9, uuid.UUID{}, 1, 1, time.Now().Add(50*time.Hour), "earlier booking", "PENDING", "", "")),
				},
				body: fmt.Sprintf(`{"doctor_uuid":%q,"date":%q,"reason":"checkup"}`, "11111111-1111-1111-1111-111111111111", futureDate),
			},
			want: http.StatusConflict,
		},
		{
			name: "should not create the appointment request due to a database error",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDError(),
				},
				body: fmt.Sprintf(`{"doctor_uuid":%q,"date":%q,"reason":"checkup"}`, "11111111-1111-1111-1111-111111111111", futureDate),
			},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("POST", "/api/v1/appointments", strings.NewReader(tt.args.body))

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestUpdateAppointment(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	futureDate := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	type args struct {
		config          configs.Config
		mockAuth        mockAuthorizer
		dbConn          mock.Connection
		dbMockOptions   []mock.DBResultOption
		tokens          *auth.Tokens
		appointmentUUID string
		body            string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should reschedule the appointment",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 1, 1, time.Now().Add(24*time.Hour), "checkup", "PENDING", "", "")),
					withFindDoctorByIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withFindPatientDayAppointmentResult(appointmentRows()),
					withUpdateAppointmentScheduleResult(sqlmock.NewResult(0, 1)),
				},
				appointmentUUID: uuid.UUID{}.String(),
				body:            fmt.Sprintf(`{"date":%q,"reason":"checkup, rescheduled"}`, futureDate),
			},
			want: http.StatusOK,
		},
		{
			name: "should not reschedule an appointment that was already processed",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 1, 1, time.Now().Add(24*time.Hour), "checkup", "APPROVED", "see you", "")),
				},
				appointmentUUID: uuid.UUID{}.String(),
				body:            fmt.Sprintf(`{"date":%q,"reason":"checkup, rescheduled"}`, futureDate),
			},
			want: http.StatusConflict,
		},
		{
			name: "should not reschedule an appointment of another patient",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 1, 99, time.Now().Add(24*time.Hour), "checkup", "PENDING", "", "")),
				},
				appointmentUUID: uuid.UUID{}.String(),
				body:            fmt.Sprintf(`{"date":%q,"reason":"checkup, rescheduled"}`, futureDate),
			},
			want: http.StatusForbidden,
		},
		{
			name: "should not reschedule an unknown appointment",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows()),
				},
				appointmentUUID: uuid.UUID{}.String(),
				body:            fmt.Sprintf(`{"date":%q,"reason":"checkup, rescheduled"}`, futureDate),
			},
			want: http.StatusNotFound,
		},
		{
			name: "should not reschedule the appointment because the given UUID is wrong",
			args: args{
				config:          config,
				dbConn:          mock.MustCreateConnectionMock(),
				mockAuth:        patientAuthorizer(),
				tokens:          auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				appointmentUUID: "not-a-uuid",
				body:            fmt.Sprintf(`{"date":%q,"reason":"checkup, rescheduled"}`, futureDate),
			},
			want: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/appointments/%s", tt.args.appointmentUUID), strings.NewReader(tt.args.body))

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestResolveAppointment(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		config          configs.Config
		mockAuth        mockAuthorizer
		dbConn          mock.Connection
		dbMockOptions   []mock.DBResultOption
		tokens          *auth.Tokens
		appointmentUUID string
		action          string
		body            string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should approve the appointment and cascade the rejections",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 1, 1, time.Now().Add(24*time.Hour), "checkup", "PENDING", "", "")),
					withApproveCascadeResult(2),
				},
				appointmentUUID: uuid.UUID{}.String(),
				action:          "approve",
				body:            `{"message":"see you then"}`,
			},
			want: http.StatusOK,
		},
		{
			name: "should reject the appointment with a reason",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 1, 1, time.Now().Add(24*time.Hour), "checkup", "PENDING", "", "")),
					withRejectAppointmentResult(sqlmock.NewResult(0, 1)),
				},
				appointmentUUID: uuid.UUID{}.String(),
				action:          "reject",
				body:            `{"message":"out of office that day"}`,
			},
			want: http.StatusOK,
		},
		{
			name: "should not reject the appointment without a reason",
			args: args{
				config:          config,
				dbConn:          mock.MustCreateConnectionMock(),
				mockAuth:        doctorAuthorizer(),
				tokens:          auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				appointmentUUID: uuid.UUID{}.String(),
				action:          "reject",
				body:            `{"message":" "}`,
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not resolve an appointment that was already processed",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 1, 1, time.Now().Add(24*time.Hour), "checkup", "REJECTED", "", "out of office")),
				},
				appointmentUUID: uuid.UUID{}.String(),
				action:          "approve",
				body:            `{"message":"see you then"}`,
			},
			want: http.StatusConflict,
		},
		{
			name: "should not resolve an appointment of another doctor",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withFindAppointmentByUUIDResult(appointmentRows().AddRow(5, uuid.UUID{}, 99, 1, time.Now().Add(24*time.Hour), "checkup", "PENDING", "", "")),
				},
				appointmentUUID: uuid.UUID{}.String(),
				action:          "approve",
				body:            `{"message":"see you then"}`,
			},
			want: http.StatusForbidden,
		},
		{
			name: "should not resolve the appointment for a patient account",
			args: args{
				config:          config,
				dbConn:          mock.MustCreateConnectionMock(),
				mockAuth:        patientAuthorizer(),
				tokens:          auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				appointmentUUID: uuid.UUID{}.String(),
				action:          "approve",
				body:            `{"message":"see you then"}`,
			},
			want: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/doctor/appointments/%s/%s", tt.args.appointmentUUID, tt.args.action), strings.NewReader(tt.args.body))

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestGetPatientAppointments(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		config        configs.Config
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		statusFilter  string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should list the patient appointments",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withListByPatientResult(appointmentRows().
						AddRow(2, uuid.UUID{}, 1, 1, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), "follow-up", "PENDING", "", "").
						AddRow(1, uuid.UUID{}, 1, 1, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "checkup", "APPROVED", "see you", "")),
				},
			},
			want: http.StatusOK,
		},
		{
			name: "should list the patient appointments filtered by status",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(patientRows().AddRow(1, uuid.UUID{}, 1, "Mary Major", "patient@clinic.com")),
					withSweepExpiredResult(sqlmock.NewResult(0, 1)),
					withListByPatientStatusResult(appointmentRows().AddRow(2, uuid.UUID{}, 1, 1, time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), "follow-up", "PENDING", "", "")),
				},
				statusFilter: "pending",
			},
			want: http.StatusOK,
		},
		{
			name: "should not list the patient appointments with an unknown status filter",
			args: args{
				config:       config,
				dbConn:       mock.MustCreateConnectionMock(),
				mockAuth:     patientAuthorizer(),
				tokens:       auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				statusFilter: "postponed",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not list the patient appointments due to a database error",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDError(),
				},
			},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/appointments?status=%s", tt.args.statusFilter), nil)

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestGetDoctorAppointments(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		config        configs.Config
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should list the doctor appointments",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withListByDoctorResult(appointmentRows().AddRow(1, uuid.UUID{}, 1, 1, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), "checkup", "PENDING", "", "")),
				},
			},
			want: http.StatusOK,
		},
		{
			name: "should not list the doctor appointments for a patient account",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
			},
			want: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("GET", "/api/v1/doctor/appointments", nil)

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestGetDoctorDashboard(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		config        configs.Config
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should summarize the doctor appointments",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withCountByDoctorStatusResult(sqlmock.NewRows([]string{"status", "count"}).AddRow("PENDING", 2).AddRow("APPROVED", 1)),
					withFindUpcomingByDoctorResult(appointmentRows().AddRow(1, uuid.UUID{}, 1, 1, time.Now().Add(24*time.Hour), "checkup", "APPROVED", "see you", "")),
				},
			},
			want: http.StatusOK,
		},
		{
			name: "should not summarize the doctor appointments for a patient account",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: patientAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
			},
			want: http.StatusForbidden,
		},
		{
			name: "should not summarize the doctor appointments due to a database error",
			args: args{
				config:   config,
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: doctorAuthorizer(),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(doctorRows().AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology", allWeekdays)),
					withSweepExpiredResult(sqlmock.NewResult(0, 0)),
					withCountByDoctorStatusError(),
				},
			},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, tt.args.config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req, _ := http.NewRequest("GET", "/api/v1/doctor/dashboard", nil)

			token := ""
			if tt.args.tokens != nil {
				token = fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken)
			}

			req.Header.Add("Authorization", token)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}
