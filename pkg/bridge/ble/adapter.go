package ble

import (
	"fmt"

	"tinygo.org/x/bluetooth"
)

// AdapterStack implements Stack on a bluetooth adapter.
type AdapterStack struct {
	Adapter *bluetooth.Adapter

	adv *bluetooth.Advertisement
	tx  bluetooth.Characteristic
}

// NewAdapterStack creates an AdapterStack on the default adapter.
func NewAdapterStack() *AdapterStack {
	return &AdapterStack{Adapter: bluetooth.DefaultAdapter}
}

func mustParseUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return uuid
}

// Start implements Stack.
func (s *AdapterStack) Start(name string, initial []byte, h Handlers) error {
	if err := s.Adapter.Enable(); err != nil {
		return fmt.Errorf("enable adapter: %w", err)
	}
	s.Adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		h.Connect(device.Address.String(), connected)
	})
	err := s.Adapter.AddService(&bluetooth.Service{
		UUID: mustParseUUID(ServiceID),
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				UUID: mustParseUUID(RXID),
				Flags: bluetooth.CharacteristicWritePermission |
					bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					h.Write(append([]byte(nil), value...))
				},
			},
			{
				Handle: &s.tx,
				UUID:   mustParseUUID(TXID),
				Value:  initial,
				Flags: bluetooth.CharacteristicReadPermission |
					bluetooth.CharacteristicNotifyPermission,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}
	s.adv = s.Adapter.DefaultAdvertisement()
	err = s.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    name,
		ServiceUUIDs: []bluetooth.UUID{bluetooth.New16BitUUID(AdvertisedID)},
	})
	if err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	return s.adv.Start()
}

// Advertise implements Stack.
func (s *AdapterStack) Advertise() error {
	if s.adv == nil {
		return nil
	}
	s.adv.Stop()
	return s.adv.Start()
}

// Notify implements Stack.
func (s *AdapterStack) Notify(data []byte) error {
	_, err := s.tx.Write(data)
	return err
}
