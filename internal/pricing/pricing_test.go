package pricing

import (
	"testing"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRatePerMinuteAppliesMarkup(t *testing.T) {
	// The rate is exact; only totals and persisted values are rounded.
	cases := []struct {
		base string
		want string
	}{
		{"0", "0"},
		{"50", "60"},
		{"100", "120"},
		{"33.33", "39.996"},
		{"0.01", "0.012"},
		{"50.01", "60.012"},
		{"1234.56", "1481.472"},
	}

	for _, tc := range cases {
		got := RatePerMinute(dec(tc.base), PlatformMarkup)
		assert.True(t, got.Equal(dec(tc.want)), "base %s: got %s, want %s", tc.base, got, tc.want)
	}
}

func TestTotalRoundsHalfUp(t *testing.T) {
	// 0.125 * 3 = 0.375 -> 0.38 under round half up
	got := Total(dec("0.125"), 3)
	assert.True(t, got.Equal(dec("0.38")), "got %s", got)

	got = Total(dec("60"), 30)
	assert.True(t, got.Equal(dec("1800")), "got %s", got)
}

func TestConsultantShareStripsMarkup(t *testing.T) {
	cases := []struct {
		total string
		want  string
	}{
		{"1800.00", "1500.00"},
		{"6480.00", "5400.00"},
		{"0.00", "0.00"},
		{"1.00", "0.83"}, // 0.8333... rounds to 0.83
	}

	for _, tc := range cases {
		got := ConsultantShare(dec(tc.total))
		assert.True(t, got.Equal(dec(tc.want)), "total %s: got %s, want %s", tc.total, got, tc.want)
	}
}

func TestNewQuoteScenarioTextRate(t *testing.T) {
	// Consultant base text rate 50, Text, 30 minutes:
	// rate = 60.00, total = 1800.00.
	card := domain.RateCard{
		TextRate:  dec("50"),
		VoiceRate: dec("80"),
		VideoRate: dec("120"),
	}

	q, err := NewQuote(card, domain.ConsultationText, 30)
	require.NoError(t, err)

	assert.Equal(t, domain.ConsultationText, q.ConsultationType)
	assert.True(t, q.RatePerMinute.Equal(dec("60")))
	assert.Equal(t, 30, q.DurationMinutes)
	assert.True(t, q.TotalAmount.Equal(dec("1800")))
}

func TestNewQuotePicksRateByType(t *testing.T) {
	card := domain.RateCard{
		TextRate:  dec("10"),
		VoiceRate: dec("20"),
		VideoRate: dec("30"),
	}

	q, err := NewQuote(card, domain.ConsultationVoice, 10)
	require.NoError(t, err)
	assert.True(t, q.RatePerMinute.Equal(dec("24")))

	q, err = NewQuote(card, domain.ConsultationVideo, 10)
	require.NoError(t, err)
	assert.True(t, q.RatePerMinute.Equal(dec("36")))
}

func TestNewQuoteTotalEqualsRateTimesDuration(t *testing.T) {
	card := domain.RateCard{TextRate: dec("47.50")}

	for _, minutes := range []int{1, 7, 15, 30, 45, 60, 90, 120} {
		q, err := NewQuote(card, domain.ConsultationText, minutes)
		require.NoError(t, err)
		assert.True(t, q.TotalAmount.Equal(Total(q.RatePerMinute, minutes)),
			"minutes=%d: %s != %s", minutes, q.TotalAmount, Total(q.RatePerMinute, minutes))
	}
}

func TestNewQuoteRejectsInvalidInput(t *testing.T) {
	card := domain.RateCard{TextRate: dec("50")}

	_, err := NewQuote(card, domain.ConsultationText, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewQuote(card, domain.ConsultationText, -5)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewQuote(card, domain.ConsultationType("Carrier Pigeon"), 30)
	assert.ErrorIs(t, err, ErrUnknownType)

	negCard := domain.RateCard{TextRate: dec("-1")}
	_, err = NewQuote(negCard, domain.ConsultationText, 30)
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestQuoteFrozenAgainstRateCardMutation(t *testing.T) {
	card := domain.RateCard{TextRate: dec("50")}

	q, err := NewQuote(card, domain.ConsultationText, 30)
	require.NoError(t, err)

	// The consultant changes rates after the quote was produced. The
	// quote keeps what the client was shown.
	card.TextRate = dec("500")

	assert.True(t, q.RatePerMinute.Equal(dec("60")))
	assert.True(t, q.TotalAmount.Equal(dec("1800")))
}
