package famafrench

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `This file was created using the CRSP database.
The 1-month TBill return is from Ibbotson and Associates Inc.

,Mkt-RF,SMB,HML,RF
192607,    2.96,   -2.56,   -2.43,    0.22
192608,    2.64,   -1.17,    3.82,    0.25
192609,  -99.99,  -99.99,  -99.99,    0.23

 Annual Factors: January-December
,Mkt-RF,SMB,HML,RF
1927,   29.47,   -2.54,   -3.75,    3.12
`

func TestParseMonthly(t *testing.T) {
	frame, err := ParseMonthly(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Missing-value row is dropped, annual section is never reached.
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, Columns, frame.Columns())
	assert.Equal(t, time.Date(1926, 7, 1, 0, 0, 0, 0, time.UTC), frame.Date(0))

	mkt, err := frame.Value(0, "mkt_excess")
	require.NoError(t, err)
	assert.InDelta(t, 0.0296, mkt, 1e-12)

	rf, err := frame.Value(1, "rf")
	require.NoError(t, err)
	assert.InDelta(t, 0.0025, rf, 1e-12)
}

func TestParseMonthlyNoData(t *testing.T) {
	_, err := ParseMonthly(strings.NewReader("just prose\nno header\n"))
	require.Error(t, err)
}

func TestParseMonthlyBadNumber(t *testing.T) {
	data := ",Mkt-RF,SMB,HML,RF\n192607, abc, 1, 1, 1\n"
	_, err := ParseMonthly(strings.NewReader(data))
	require.Error(t, err)
}

func TestGetMonthlyFactors(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("F-F_Research_Data_Factors.CSV")
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	client := NewClient(ClientOptions{URL: server.URL, RequestTimeout: 5 * time.Second})
	frame, err := client.GetMonthlyFactors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Len())
}

func TestGetMonthlyFactorsNoCSVEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nothing here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	client := NewClient(ClientOptions{URL: server.URL, RequestTimeout: 5 * time.Second})
	_, err = client.GetMonthlyFactors(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CSV entry")
}
