/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package exporter

import (
	"fmt"
	"strings"

	"github.com/comcast/hpilo-exporter/common"
	"github.com/comcast/hpilo-exporter/ribcl"
)

// handle maps request kinds onto their normalize handlers.
func handle(exp *Exporter, kinds ...ribcl.Kind) []common.Handler {
	var handlers []common.Handler
	for _, kind := range kinds {
		switch kind {
		case ribcl.KindFirmware:
			handlers = append(handlers, exp.exportFirmwareMetrics)
		case ribcl.KindPower:
			handlers = append(handlers, exp.exportPowerMetrics)
		case ribcl.KindThermal:
			handlers = append(handlers, exp.exportThermalMetrics)
		case ribcl.KindHealthSummary:
			handlers = append(handlers, exp.exportHealthSummaryMetrics)
		case ribcl.KindMemory:
			handlers = append(handlers, exp.exportMemoryMetrics)
		case ribcl.KindProcessor:
			handlers = append(handlers, exp.exportProcessorMetrics)
		case ribcl.KindFans:
			handlers = append(handlers, exp.exportFanMetrics)
		case ribcl.KindPowerSupplies:
			handlers = append(handlers, exp.exportPowerSupplyMetrics)
		case ribcl.KindBattery:
			handlers = append(handlers, exp.exportBatteryMetrics)
		case ribcl.KindStorage:
			handlers = append(handlers, exp.exportStorageMetrics)
		case ribcl.KindNetwork:
			handlers = append(handlers, exp.exportNetworkMetrics)
		case ribcl.KindVRM:
			handlers = append(handlers, exp.exportVRMMetrics)
		}
	}
	return handlers
}

// exportFirmwareMetrics decodes the firmware version payload and sets the prometheus gauges
func (e *Exporter) exportFirmwareMetrics(body []byte) error {
	var dm = (*e.deviceMetrics)["firmwareMetrics"]
	fw, err := ribcl.DecodeFirmware(body)
	if err != nil {
		return fmt.Errorf("Error Decoding FirmwareMetrics - " + err.Error())
	}
	if fw == nil {
		return nil
	}

	if v, ok := parseLeadingNumber(fw.FirmwareVersion); ok {
		(*dm)["firmwareVersion"].WithLabelValues(e.serverName, e.productName).Set(v)
	}
	(*dm)["firmwareInfo"].WithLabelValues(e.serverName, e.productName,
		orUnknown(fw.FirmwareVersion), orUnknown(fw.FirmwareDate), orUnknown(fw.ManagementProcessor)).Set(1.0)

	return nil
}

// exportPowerMetrics decodes the power readings payload and sets the prometheus gauges
func (e *Exporter) exportPowerMetrics(body []byte) error {
	var pow = (*e.deviceMetrics)["powerMetrics"]
	pr, err := ribcl.DecodePowerReadings(body)
	if err != nil {
		return fmt.Errorf("Error Decoding PowerMetrics - " + err.Error())
	}
	if pr == nil {
		return nil
	}

	if watts, ok := parseLeadingNumber(pr.Present.Value); ok {
		(*pow)["powerSuppliesReading"].WithLabelValues(e.serverName, e.productName).Set(watts)
	}

	return nil
}

// exportThermalMetrics decodes the temperature section and sets the prometheus gauges
func (e *Exporter) exportThermalMetrics(body []byte) error {
	var therm = (*e.deviceMetrics)["thermalMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding ThermalMetrics - " + err.Error())
	}
	if health == nil || health.Temperature == nil {
		return nil
	}

	for _, sensor := range health.Temperature.Sensors {
		if !installed(sensor.Status.Value) {
			continue
		}
		label := orUnknown(sensor.Label.Value)
		if reading, ok := parseLeadingNumber(sensor.CurrentReading.Value); ok {
			(*therm)["temperatureDetail"].WithLabelValues(e.serverName, e.productName, label).Set(reading)
		}
		// thresholds of 0 or N/A mean the sensor has none
		if caution := thresholdCelsius(sensor.Caution.Value); caution > 0 {
			(*therm)["temperatureCaution"].WithLabelValues(e.serverName, e.productName, label).Set(caution)
		}
		if critical := thresholdCelsius(sensor.Critical.Value); critical > 0 {
			(*therm)["temperatureCritical"].WithLabelValues(e.serverName, e.productName, label).Set(critical)
		}
	}

	return nil
}

// exportHealthSummaryMetrics decodes the health at a glance section and sets the prometheus gauges
func (e *Exporter) exportHealthSummaryMetrics(body []byte) error {
	var summary = (*e.deviceMetrics)["healthSummaryMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding HealthSummaryMetrics - " + err.Error())
	}
	if health == nil || health.Health == nil {
		return nil
	}

	glance := health.Health
	set := func(key string, status string) {
		if status == "" {
			return
		}
		(*summary)[key].WithLabelValues(e.serverName, e.productName).Set(healthState(status))
	}

	set("battery", glance.Battery.Status())
	set("biosHardware", glance.BIOSHardware.Status())
	set("fans", glance.Fans.Status())
	set("memory", glance.Memory.Status())
	set("network", glance.Network.Status())
	set("powerSupplies", glance.PowerSupplies.Status())
	set("processor", glance.Processor.Status())
	set("storage", glance.Storage.Status())
	set("temperature", glance.Temperature.Status())
	set("fansRedundancy", glance.Fans.Redundancy())
	set("powerSuppliesRedundancy", glance.PowerSupplies.Redundancy())

	return nil
}

// exportVRMMetrics decodes the voltage regulator section and sets the prometheus gauges.
// Controllers without a VRM section fall back to the health summary entry.
func (e *Exporter) exportVRMMetrics(body []byte) error {
	var vrm = (*e.deviceMetrics)["vrmMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding VRMMetrics - " + err.Error())
	}
	if health == nil {
		return nil
	}

	if health.VRM != nil {
		worst := StateOK
		found := false
		for _, module := range health.VRM.Modules {
			if !installed(module.Status.Value) {
				continue
			}
			found = true
			if state := healthState(module.Status.Value); state > worst {
				worst = state
			}
		}
		if found {
			(*vrm)["vrm"].WithLabelValues(e.serverName, e.productName).Set(worst)
			return nil
		}
	}

	if health.Health != nil {
		if status := health.Health.VRM.Status(); status != "" {
			(*vrm)["vrm"].WithLabelValues(e.serverName, e.productName).Set(healthState(status))
		}
	}

	return nil
}

// exportFanMetrics decodes the fans section and sets the prometheus gauges
func (e *Exporter) exportFanMetrics(body []byte) error {
	var fans = (*e.deviceMetrics)["fanMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding FanMetrics - " + err.Error())
	}
	if health == nil || health.Fans == nil {
		return nil
	}

	for _, fan := range health.Fans.Fans {
		if !installed(fan.Status.Value) {
			continue
		}
		fanID := indexFromLabel(fan.Label.Value)
		if fanID == unknownValue {
			fanID = orUnknown(fan.Label.Value)
		}
		if speed, ok := parseLeadingNumber(fan.Speed.Value); ok {
			(*fans)["fansSpeedPercent"].WithLabelValues(e.serverName, fanID).Set(speed)
		}
	}

	return nil
}

// exportPowerSupplyMetrics decodes the power supplies section and sets the prometheus gauges
func (e *Exporter) exportPowerSupplyMetrics(body []byte) error {
	var psu = (*e.deviceMetrics)["powerSupplyMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding PowerSupplyMetrics - " + err.Error())
	}
	if health == nil || health.PowerSupplies == nil {
		return nil
	}

	for _, supply := range health.PowerSupplies.Supplies {
		if strings.EqualFold(supply.Present.Value, "No") || !installed(supply.Status.Value) {
			continue
		}
		(*psu)["powerSuppliesDetail"].WithLabelValues(e.serverName, e.productName,
			indexFromLabel(supply.Label.Value),
			numberToken(supply.Capacity.Value),
			orUnknown(supply.Label.Value),
			orUnknown(supply.Status.Value)).Set(healthState(supply.Status.Value))
	}

	if s := health.PowerSupplies.Summary; s != nil {
		(*psu)["powerSuppliesSummary"].WithLabelValues(e.serverName, e.productName,
			orUnknown(s.PowerSystemRedundancy.Value),
			orUnknown(s.HighEfficiencyMode.Value),
			orUnknown(s.PMCFirmwareVersion.Value)).Set(1.0)
	}

	return nil
}

// exportMemoryMetrics decodes the memory section and sets the prometheus gauges
func (e *Exporter) exportMemoryMetrics(body []byte) error {
	var mem = (*e.deviceMetrics)["memoryMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding MemoryMetrics - " + err.Error())
	}
	if health == nil || health.Memory == nil {
		return nil
	}

	if summary := health.Memory.Summary; summary != nil {
		// sockets running at the same frequency share one sample
		totals := make(map[string]float64)
		for _, cpu := range summary.CPUs {
			gb, ok := sizeToGB(cpu.TotalMemorySize.Value, cpu.TotalMemorySize.Unit)
			if !ok || gb <= 0 {
				continue
			}
			totals[numberToken(cpu.OperatingFrequency.Value)] += gb
		}
		for freq, gb := range totals {
			(*mem)["memoryDetail"].WithLabelValues(e.serverName, e.productName, freq).Set(gb)
		}
	}

	if details := health.Memory.Details; details != nil {
		for _, cpu := range details.CPUs {
			cpuID := indexFromLabel(cpu.XMLName.Local)
			for _, socket := range cpu.Sockets {
				if !installed(socket.Status.Value) {
					continue
				}
				(*mem)["memoryDimm"].WithLabelValues(e.serverName, e.productName,
					cpuID,
					orUnknown(socket.Socket.Value),
					orUnknown(socket.Part.Number),
					numberToken(socket.Frequency.Value)).Set(healthState(socket.Status.Value))
			}
		}
	}

	return nil
}

// exportProcessorMetrics decodes the processors section and sets the prometheus gauges
func (e *Exporter) exportProcessorMetrics(body []byte) error {
	var proc = (*e.deviceMetrics)["processorMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding ProcessorMetrics - " + err.Error())
	}
	if health == nil || health.Processors == nil {
		return nil
	}

	for _, processor := range health.Processors.Processors {
		if !installed(processor.Status.Value) {
			continue
		}
		// socket labels stay unique when both sockets carry the same model
		(*proc)["processorDetail"].WithLabelValues(e.serverName, e.productName,
			orUnknown(processor.Label.Value)).Set(healthState(processor.Status.Value))
	}

	return nil
}

// exportNetworkMetrics decodes the nic section and sets the prometheus gauges
func (e *Exporter) exportNetworkMetrics(body []byte) error {
	var network = (*e.deviceMetrics)["networkMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding NetworkMetrics - " + err.Error())
	}
	if health == nil || health.Network() == nil {
		return nil
	}

	for _, nic := range health.Network().All() {
		if !installed(nic.Status.Value) {
			continue
		}
		(*network)["nicStatus"].WithLabelValues(e.serverName, e.productName,
			orUnknown(nic.NetworkPort.Value),
			orUnknown(nic.Location.Value),
			orUnknown(nic.IPAddress.Value),
			orUnknown(nic.MACAddress.Value)).Set(healthState(nic.Status.Value))
	}

	return nil
}

// exportStorageMetrics decodes the storage section and sets the prometheus gauges
func (e *Exporter) exportStorageMetrics(body []byte) error {
	var storage = (*e.deviceMetrics)["storageMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding StorageMetrics - " + err.Error())
	}
	if health == nil || health.Storage == nil {
		return nil
	}

	worst := StateOK
	found := false
	for _, controller := range health.Storage.Controllers {
		status := controller.Status.Value
		if status == "" {
			status = controller.ControllerStatus.Value
		}
		if installed(status) && status != "" {
			(*storage)["storageController"].WithLabelValues(e.serverName, e.productName,
				indexFromLabel(controller.Label.Value),
				orUnknown(controller.Model.Value)).Set(healthState(status))
		}

		for _, drive := range controller.Drives() {
			if !installed(drive.Status.Value) {
				continue
			}
			state := healthState(drive.Status.Value)
			if state > worst {
				worst = state
			}
			found = true
			(*storage)["driveDetail"].WithLabelValues(e.serverName, e.productName,
				indexFromLabel(drive.Label.Value),
				orUnknown(drive.Location.Value),
				orUnknown(drive.MediaType.Value)).Set(state)
		}
	}
	if found {
		(*storage)["drive"].WithLabelValues(e.serverName, e.productName).Set(worst)
	}

	return nil
}

// exportBatteryMetrics decodes the smart storage battery section and sets the prometheus gauges
func (e *Exporter) exportBatteryMetrics(body []byte) error {
	var battery = (*e.deviceMetrics)["batteryMetrics"]
	health, err := ribcl.DecodeEmbeddedHealth(body)
	if err != nil {
		return fmt.Errorf("Error Decoding BatteryMetrics - " + err.Error())
	}
	if health == nil || health.Battery == nil {
		return nil
	}

	for _, b := range health.Battery.Batteries {
		if strings.EqualFold(b.Present.Value, "No") || !installed(b.Status.Value) {
			continue
		}
		(*battery)["batteryDetail"].WithLabelValues(e.serverName, e.productName,
			indexFromLabel(b.Label.Value),
			orUnknown(b.Model.Value)).Set(healthState(b.Status.Value))
	}

	return nil
}
