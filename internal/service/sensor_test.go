package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zabecode/dac/internal/service"
	"github.com/zabecode/dac/internal/store"
	"github.com/zabecode/dac/pkg/models"
)

func TestSensorCreate(t *testing.T) {
	ms := &memStore{}
	spy := &spyNotifier{}
	svc := service.NewSensorService(ms, spy)
	d := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:01")

	sensor, err := svc.Create(context.Background(), "acme", service.CreateSensorParams{
		DeviceID: d.ID,
		Code:     7,
		Name:     "Pressure",
	})
	require.NoError(t, err)
	assert.Positive(t, sensor.ID)
	assert.True(t, sensor.Active)
	assert.Equal(t, models.SensorKindCustom, sensor.Kind)
	assert.Equal(t, []string{"acme"}, spy.refreshes)
}

func TestSensorCreate_CrossTenantDevice(t *testing.T) {
	ms := &memStore{}
	svc := service.NewSensorService(ms, &spyNotifier{})
	d := seedDevice(ms, "other", "AA:BB:CC:DD:EE:01")

	_, err := svc.Create(context.Background(), "acme", service.CreateSensorParams{
		DeviceID: d.ID,
		Code:     1,
		Name:     "Temp",
	})
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "device_id")
}

func TestSensorCreate_DuplicateCode(t *testing.T) {
	ms := &memStore{}
	svc := service.NewSensorService(ms, &spyNotifier{})
	d := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:01")
	seedSensor(ms, "acme", d.ID, 7)

	_, err := svc.Create(context.Background(), "acme", service.CreateSensorParams{
		DeviceID: d.ID,
		Code:     7,
		Name:     "Pressure",
	})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestSensorList_FilterByDevice(t *testing.T) {
	ms := &memStore{}
	svc := service.NewSensorService(ms, &spyNotifier{})
	d1 := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:01")
	d2 := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:02")
	seedSensor(ms, "acme", d1.ID, 1)
	seedSensor(ms, "acme", d2.ID, 1)

	all, err := svc.List(context.Background(), "acme", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(context.Background(), "acme", &d2.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, d2.ID, filtered[0].DeviceID)
}

func TestSensorUpdate(t *testing.T) {
	ms := &memStore{}
	svc := service.NewSensorService(ms, &spyNotifier{})
	d := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:01")
	sn := seedSensor(ms, "acme", d.ID, 1)

	name := "Humidity"
	kind := models.SensorKindMQTT
	sensor, err := svc.Update(context.Background(), sn.ID, "acme", service.UpdateSensorParams{
		Name: &name,
		Kind: &kind,
	})
	require.NoError(t, err)
	assert.Equal(t, "Humidity", sensor.Name)
	assert.Equal(t, models.SensorKindMQTT, sensor.Kind)
	assert.Equal(t, 1, sensor.Code)
}

func TestSensorUpdate_MoveToCrossTenantDevice(t *testing.T) {
	ms := &memStore{}
	svc := service.NewSensorService(ms, &spyNotifier{})
	d := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:01")
	foreign := seedDevice(ms, "other", "AA:BB:CC:DD:EE:02")
	sn := seedSensor(ms, "acme", d.ID, 1)

	_, err := svc.Update(context.Background(), sn.ID, "acme", service.UpdateSensorParams{
		DeviceID: &foreign.ID,
	})
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "device_id")
}

func TestSensorDelete_CrossTenant(t *testing.T) {
	ms := &memStore{}
	svc := service.NewSensorService(ms, &spyNotifier{})
	d := seedDevice(ms, "acme", "AA:BB:CC:DD:EE:01")
	sn := seedSensor(ms, "acme", d.ID, 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), sn.ID, "other"), store.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), sn.ID, "acme"))
}
