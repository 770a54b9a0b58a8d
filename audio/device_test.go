package audio

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pickerDevices() []DeviceInfo {
	return []DeviceInfo{
		{ID: "default", Name: "Built-in Microphone"},
		{ID: "usb", Name: "USB Condenser"},
		{ID: "bt", Name: "Headset"},
	}
}

func TestChooseDeviceByDigit(t *testing.T) {
	dev, err := chooseDevice(pickerDevices(), strings.NewReader("2"), io.Discard)
	require.NoError(t, err)
	require.Equal(t, "usb", dev.ID)
}

func TestChooseDeviceEnterTakesDefault(t *testing.T) {
	dev, err := chooseDevice(pickerDevices(), strings.NewReader("\r"), io.Discard)
	require.NoError(t, err)
	require.Equal(t, "default", dev.ID)
}

func TestChooseDeviceIgnoresOutOfRange(t *testing.T) {
	// 9 and 0 are not valid for a three-entry list; the 3 that follows is.
	dev, err := chooseDevice(pickerDevices(), strings.NewReader("903"), io.Discard)
	require.NoError(t, err)
	require.Equal(t, "bt", dev.ID)
}

func TestChooseDeviceCancel(t *testing.T) {
	for _, key := range []string{"q", "\x1b", "\x03"} {
		_, err := chooseDevice(pickerDevices(), strings.NewReader(key), io.Discard)
		require.Error(t, err)
	}
}
