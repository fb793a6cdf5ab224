package errors

import "net/http"

// ErrorCode identifies a failure category. Codes read MODULE_NNN, where
// MODULE is COMMON, SIG (signal resolution and grids), ANA (composite
// analyses), LOC (identified locations) or SRC (the upstream provider).
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeMessagingError     ErrorCode = "COMMON_016"

	ErrCodeResolutionFailure    ErrorCode = "SIG_001"
	ErrCodeInvalidDemographic   ErrorCode = "SIG_002"
	ErrCodeEmptyGrid            ErrorCode = "SIG_003"
	ErrCodeInvalidLocation      ErrorCode = "SIG_004"
	ErrCodeInvalidPoliticalBase ErrorCode = "SIG_005"

	ErrCodeNoOverlap        ErrorCode = "ANA_001"
	ErrCodeBaseDataMissing  ErrorCode = "ANA_002"
	ErrCodeAnalysisNotFound ErrorCode = "ANA_003"
	ErrCodeAnalysisFailed   ErrorCode = "ANA_004"
	ErrCodeNoRallySegments  ErrorCode = "ANA_005"
	ErrCodeReportFailed     ErrorCode = "ANA_006"

	ErrCodeEmptyFilterResult  ErrorCode = "LOC_001"
	ErrCodeInvalidCriteria    ErrorCode = "LOC_002"
	ErrCodeLocationsNotFound  ErrorCode = "LOC_003"
	ErrCodeInsufficientPoints ErrorCode = "LOC_004"

	ErrCodeProviderError       ErrorCode = "SRC_001"
	ErrCodeProviderRateLimited ErrorCode = "SRC_002"
	ErrCodeProviderAuthFailed  ErrorCode = "SRC_003"
	ErrCodeProviderParseError  ErrorCode = "SRC_004"
	ErrCodeProviderTimeout     ErrorCode = "SRC_005"
)

// Short aliases. CodeUnknown passed to Wrap keeps the wrapped error's code.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("")
)

type codeSpec struct {
	status  int
	message string
}

// registry holds the HTTP status and fallback message of every code. A 200
// status marks an outcome the caller reports as a warning, not a failure.
var registry = map[ErrorCode]codeSpec{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeConflict:           {http.StatusConflict, "resource conflict"},
	ErrCodeTooManyRequests:    {http.StatusTooManyRequests, "too many requests"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeValidation:         {http.StatusUnprocessableEntity, "validation failed"},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization error"},
	ErrCodeDatabaseError:      {http.StatusInternalServerError, "database error"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},
	ErrCodeStorageError:       {http.StatusInternalServerError, "object storage error"},
	ErrCodeMessagingError:     {http.StatusInternalServerError, "messaging error"},

	ErrCodeResolutionFailure:    {http.StatusUnprocessableEntity, "name could not be resolved"},
	ErrCodeInvalidDemographic:   {http.StatusBadRequest, "unsupported demographic value"},
	ErrCodeEmptyGrid:            {http.StatusNotFound, "no location data returned"},
	ErrCodeInvalidLocation:      {http.StatusBadRequest, "location query is required"},
	ErrCodeInvalidPoliticalBase: {http.StatusBadRequest, "unsupported political base"},

	ErrCodeNoOverlap:        {http.StatusUnprocessableEntity, "no overlapping locations between sources"},
	ErrCodeBaseDataMissing:  {http.StatusUnprocessableEntity, "no political base data found"},
	ErrCodeAnalysisNotFound: {http.StatusNotFound, "analysis not found"},
	ErrCodeAnalysisFailed:   {http.StatusInternalServerError, "analysis failed"},
	ErrCodeNoRallySegments:  {http.StatusOK, "no Rally the Base segments found"},
	ErrCodeReportFailed:     {http.StatusInternalServerError, "report generation failed"},

	ErrCodeEmptyFilterResult:  {http.StatusOK, "no locations match the filter criteria"},
	ErrCodeInvalidCriteria:    {http.StatusBadRequest, "invalid filter criteria"},
	ErrCodeLocationsNotFound:  {http.StatusNotFound, "identified locations not found"},
	ErrCodeInsufficientPoints: {http.StatusUnprocessableEntity, "not enough points to build a polygon"},

	ErrCodeProviderError:       {http.StatusBadGateway, "provider request failed"},
	ErrCodeProviderRateLimited: {http.StatusTooManyRequests, "provider rate limited"},
	ErrCodeProviderAuthFailed:  {http.StatusBadGateway, "provider authentication failed"},
	ErrCodeProviderParseError:  {http.StatusBadGateway, "failed to parse provider response"},
	ErrCodeProviderTimeout:     {http.StatusGatewayTimeout, "provider timeout"},
}

// HTTPStatusForCode maps code to a response status; unknown codes are 500.
func HTTPStatusForCode(code ErrorCode) int {
	if s, ok := registry[code]; ok {
		return s.status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode is the message shown when the real one must not
// leak, e.g. for internal errors.
func DefaultMessageForCode(code ErrorCode) string {
	if s, ok := registry[code]; ok {
		return s.message
	}
	return "unknown error"
}

// IsWarningCode reports whether code marks a non-fatal outcome such as an
// empty filter result.
func IsWarningCode(code ErrorCode) bool {
	s, ok := registry[code]
	return ok && s.status == http.StatusOK
}

//Personal.AI order the ending
