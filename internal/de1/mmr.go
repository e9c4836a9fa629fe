package de1

import "fmt"

// MMR register addresses exposed by the DE1's memory-mapped register space.
const (
	MMRCPUBoardModel   uint32 = 0x800008
	MMRMachineModel    uint32 = 0x80000C
	MMRFirmwareVersion uint32 = 0x800010
	MMRFanThreshold    uint32 = 0x803808
	MMRGHCInfo         uint32 = 0x80381C
	MMRGHCMode         uint32 = 0x803820
	MMRSteamFlow       uint32 = 0x803828
	MMRSerialNumber    uint32 = 0x803830
	MMRHeaterVoltage   uint32 = 0x803834
	MMRUSBCharger      uint32 = 0x803854
	MMRRefillKit       uint32 = 0x80385C
)

// MMRAddressName returns the register name for log lines, or the raw address
// in hex for addresses outside the known map.
func MMRAddressName(addr uint32) string {
	switch addr {
	case MMRCPUBoardModel:
		return "CPU_BOARD_MODEL"
	case MMRMachineModel:
		return "MACHINE_MODEL"
	case MMRFirmwareVersion:
		return "FIRMWARE_VERSION"
	case MMRFanThreshold:
		return "FAN_THRESHOLD"
	case MMRGHCInfo:
		return "GHC_INFO"
	case MMRGHCMode:
		return "GHC_MODE"
	case MMRSteamFlow:
		return "STEAM_FLOW"
	case MMRSerialNumber:
		return "SERIAL_NUMBER"
	case MMRHeaterVoltage:
		return "HEATER_VOLTAGE"
	case MMRUSBCharger:
		return "USB_CHARGER"
	case MMRRefillKit:
		return "REFILL_KIT"
	default:
		return fmt.Sprintf("0x%06x", addr)
	}
}
