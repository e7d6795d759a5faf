package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hwy4Network = "../../internal/netfile/testdata/hwy4.yaml"

func TestRun_PointDistance(t *testing.T) {
	var out bytes.Buffer
	err := run("point-distance", []string{
		"--lat1", "38.0675", "--lng1", "-120.5436",
		"--lat2", "38.1391", "--lng2", "-120.4561",
		"--metric", "haversine",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Distance between points (haversine)")
}

func TestRun_PolylineLength(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("polyline-length", []string{"--polyline", "{`jgFntv~Uw~EcpG"}, &out))
	assert.Contains(t, out.String(), "over 2 points")
}

func TestRun_PolylineRequired(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("polyline-point", []string{"--offset", "10"}, &out))
}

func TestRun_PolylineShiftKML(t *testing.T) {
	var out bytes.Buffer
	err := run("polyline-shift", []string{"--polyline", "{`jgFntv~Uw~EcpG", "--distance", "5", "--format", "kml"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<name>shifted</name>")
}

func TestRun_Route(t *testing.T) {
	var out bytes.Buffer
	err := run("route", []string{
		"--network", hwy4Network,
		"--links", "hwy4-angels-mid,hwy4-mid-murphys",
		"--start", "1000",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Route with 2 spots:")
	assert.Contains(t, out.String(), "Spot(Link(hwy4-angels-mid), 1000.000000, -1)")
}

func TestRun_RouteNonAdjacent(t *testing.T) {
	var out bytes.Buffer
	err := run("route", []string{
		"--network", hwy4Network,
		"--links", "hwy4-angels-mid,hwy4-murphys-arnold",
	}, &out)
	assert.Error(t, err)
}

func TestRun_Successors(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("successors", []string{"--network", hwy4Network, "--link", "hwy4-angels-mid"}, &out))
	assert.Equal(t, "hwy4-mid-murphys\n", out.String())
}

func TestRun_Unknown(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("frobnicate", nil, &out))
	assert.Contains(t, out.String(), "USAGE:")
}

func TestRun_RouteSingleLink(t *testing.T) {
	var out bytes.Buffer
	err := run("route", []string{
		"--network", hwy4Network,
		"--links", "hwy4-murphys-arnold",
		"--format", "geojson",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"kind":"route"`)
}
