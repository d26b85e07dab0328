package parse

import (
	"net/url"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/model"
)

func TestParseFilterSpec(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		query     string
		expected  logfilter.FilterSpec
		expectErr string
	}{
		{
			name:     "Empty query is the identity spec",
			query:    "",
			expected: logfilter.FilterSpec{},
		},
		{
			name:     "All values are dropped",
			query:    "status=all&vehicleType=all&tab=all",
			expected: logfilter.FilterSpec{},
		},
		{
			name:  "Full spec",
			query: "status=Exited&vehicleType=CAR&tab=exited&dateFrom=2024-01-01&dateTo=2024-01-31&search=+doe+",
			expected: logfilter.FilterSpec{
				Status:      model.StatusExited,
				VehicleType: model.VehicleCar,
				ViewTab:     model.StatusExited,
				DateFrom:    time.Date(2024, 1, 1, 0, 0, 0, 0, colombo),
				DateTo:      time.Date(2024, 1, 31, 0, 0, 0, 0, colombo),
				SearchTerm:  "doe",
			},
		},
		{name: "Bad status", query: "status=gone", expectErr: "status"},
		{name: "Bad tab", query: "tab=taxi", expectErr: "tab"},
		{name: "Bad vehicle type", query: "vehicleType=truck", expectErr: "vehicleType"},
		{name: "Bad date", query: "dateFrom=01/02/2024", expectErr: "dateFrom"},
		{name: "Impossible date", query: "dateTo=2024-02-30", expectErr: "dateTo"},
		{name: "Inverted range", query: "dateFrom=2024-02-02&dateTo=2024-02-01", expectErr: "before dateFrom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			spec, err := ParseFilterSpec(q, colombo)
			if tc.expectErr != "" {
				var fe *FilterError
				require.ErrorAs(t, err, &fe)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, spec)
		})
	}
}

func TestParsePickupTime(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)

	got, err := ParsePickupTime("2024-06-01T08:30", colombo)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)))

	got, err = ParsePickupTime("2024-06-01T08:30:00Z", colombo)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)))

	_, err = ParsePickupTime("tomorrow", colombo)
	assert.Error(t, err)
}
