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
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the gauge vectors of one request kind. Group keys in
// the device map line up one to one with request kinds so a failed kind
// can keep its previous group while fresh kinds replace theirs.
type Metrics map[string]*prometheus.GaugeVec

func newServerMetric(metricName string, docString string, constLabels prometheus.Labels, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        metricName,
			Help:        docString,
			ConstLabels: constLabels,
		},
		labelNames,
	)
}

func NewDeviceMetrics() *map[string]*Metrics {
	var (
		FirmwareMetrics = &Metrics{
			"firmwareVersion": newServerMetric("hpilo_firmware_version", "Current management controller firmware version as a number", nil, []string{"server_name", "product_name"}),
			"firmwareInfo":    newServerMetric("hpilo_firmware_info", "Snapshot of management controller firmware information, value is always 1", nil, []string{"server_name", "product_name", "firmware_version", "firmware_date", "management_processor"}),
		}

		PowerMetrics = &Metrics{
			"powerSuppliesReading": newServerMetric("hpilo_power_supplies_reading", "Present power reading in watts", nil, []string{"server_name", "product_name"}),
		}

		ThermalMetrics = &Metrics{
			"temperatureDetail":   newServerMetric("hpilo_temperature_detail", "Current temperature sensor reading in celsius", nil, []string{"server_name", "product_name", "label"}),
			"temperatureCaution":  newServerMetric("hpilo_temperature_caution", "Temperature sensor caution threshold in celsius", nil, []string{"server_name", "product_name", "label"}),
			"temperatureCritical": newServerMetric("hpilo_temperature_critical", "Temperature sensor critical threshold in celsius", nil, []string{"server_name", "product_name", "label"}),
		}

		HealthSummaryMetrics = &Metrics{
			"battery":                 newServerMetric("hpilo_battery", "Current battery health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"biosHardware":            newServerMetric("hpilo_bios_hardware", "Current bios hardware health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"fans":                    newServerMetric("hpilo_fans", "Current fans health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"memory":                  newServerMetric("hpilo_memory", "Current memory health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"network":                 newServerMetric("hpilo_network", "Current network health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"powerSupplies":           newServerMetric("hpilo_power_supplies", "Current power supplies health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"processor":               newServerMetric("hpilo_processor", "Current processor health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"storage":                 newServerMetric("hpilo_storage", "Current storage health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"temperature":             newServerMetric("hpilo_temperature", "Current temperature health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"fansRedundancy":          newServerMetric("hpilo_fans_redundancy", "Current fans redundancy 0 = Redundant, 1 = Not Redundant, 2 = Other", nil, []string{"server_name", "product_name"}),
			"powerSuppliesRedundancy": newServerMetric("hpilo_power_supplies_redundancy", "Current power supplies redundancy 0 = Redundant, 1 = Not Redundant, 2 = Other", nil, []string{"server_name", "product_name"}),
		}

		VRMMetrics = &Metrics{
			"vrm": newServerMetric("hpilo_vrm", "Current voltage regulator health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
		}

		FanMetrics = &Metrics{
			"fansSpeedPercent": newServerMetric("hpilo_fans_speed_percent", "Current fan speed in the unit of percentage, possible values are 0 - 100", nil, []string{"server_name", "fan_id"}),
		}

		PowerSupplyMetrics = &Metrics{
			"powerSuppliesDetail":  newServerMetric("hpilo_power_supplies_detail", "Current power supply health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "psu_id", "capacity_w", "label", "status"}),
			"powerSuppliesSummary": newServerMetric("hpilo_power_supplies_summary", "Snapshot of power subsystem information, value is always 1", nil, []string{"server_name", "product_name", "power_system_redundancy", "high_efficiency_mode", "power_management_controller_firmware_version"}),
		}

		MemoryMetrics = &Metrics{
			"memoryDetail": newServerMetric("hpilo_memory_detail", "Installed memory in decimal gigabytes per operating frequency", nil, []string{"server_name", "product_name", "operating_frequency"}),
			"memoryDimm":   newServerMetric("hpilo_memory_dimm", "Current memory module health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "cpu", "socket", "part_number", "frequency"}),
		}

		ProcessorMetrics = &Metrics{
			"processorDetail": newServerMetric("hpilo_processor_detail", "Current processor socket health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "name"}),
		}

		NetworkMetrics = &Metrics{
			"nicStatus": newServerMetric("hpilo_nic_status", "Current network interface health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "port", "location", "ip_address", "mac_address"}),
		}

		StorageMetrics = &Metrics{
			"drive":             newServerMetric("hpilo_drive", "Worst physical drive health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name"}),
			"driveDetail":       newServerMetric("hpilo_drive_detail", "Current physical drive health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "drive_id", "location", "media_type"}),
			"storageController": newServerMetric("hpilo_storage_controller", "Current storage controller health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "controller_id", "model"}),
		}

		BatteryMetrics = &Metrics{
			"batteryDetail": newServerMetric("hpilo_battery_detail", "Current smart storage battery health 0 = OK, 1 = Degraded, 2 = Dead or Other", nil, []string{"server_name", "product_name", "battery_id", "model"}),
		}

		AllMetrics = &map[string]*Metrics{
			"firmwareMetrics":      FirmwareMetrics,
			"powerMetrics":         PowerMetrics,
			"thermalMetrics":       ThermalMetrics,
			"healthSummaryMetrics": HealthSummaryMetrics,
			"vrmMetrics":           VRMMetrics,
			"fanMetrics":           FanMetrics,
			"powerSupplyMetrics":   PowerSupplyMetrics,
			"memoryMetrics":        MemoryMetrics,
			"processorMetrics":     ProcessorMetrics,
			"networkMetrics":       NetworkMetrics,
			"storageMetrics":       StorageMetrics,
			"batteryMetrics":       BatteryMetrics,
		}
	)

	return AllMetrics
}
