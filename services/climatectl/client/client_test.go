package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu    sync.Mutex
	fan   bool
	lamp  bool
	paths []string
}

func (f *fakeController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)

	switch r.URL.Path {
	case "/fanOn":
		f.fan = true
	case "/fanOff":
		f.fan = false
	case "/lampOn":
		f.lamp = true
	case "/lampOff":
		f.lamp = false
	case "/data":
		w.Header().Set("Content-Type", "application/json")
		fan, lamp := "false", "false"
		if f.fan {
			fan = "true"
		}
		if f.lamp {
			lamp = "true"
		}
		w.Write([]byte(`{"temp":24.5,"hum":50.0,"fan":` + fan + `,"lamp":` + lamp + `}`))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte("<html></html>"))
}

func TestClientStatus(t *testing.T) {
	srv := httptest.NewServer(&fakeController{})
	defer srv.Close()

	st, err := New(srv.URL, time.Second).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24.5, st.Temp)
	assert.Equal(t, 50.0, st.Hum)
	assert.False(t, st.Fan)
	assert.True(t, st.SensorOK())
}

func TestClientSet(t *testing.T) {
	fake := &fakeController{}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c := New(srv.URL, time.Second)

	st, err := c.Set(context.Background(), Fan, true)
	require.NoError(t, err)
	assert.True(t, st.Fan)

	st, err = c.Set(context.Background(), Lamp, true)
	require.NoError(t, err)
	assert.True(t, st.Lamp)

	st, err = c.Set(context.Background(), Fan, false)
	require.NoError(t, err)
	assert.False(t, st.Fan)

	assert.Equal(t, []string{"/fanOn", "/data", "/lampOn", "/data", "/fanOff", "/data"}, fake.paths)
}

func TestClientSetUnknownActuator(t *testing.T) {
	_, err := New("http://127.0.0.1:1", time.Second).Set(context.Background(), Actuator("heater"), true)
	assert.Error(t, err)
}

func TestStatusSensorOK(t *testing.T) {
	assert.False(t, Status{Temp: -99, Hum: -99}.SensorOK())
	valid := false
	assert.False(t, Status{Temp: 20, Hum: 40, Valid: &valid}.SensorOK())
}
