package entity

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/coordinator"
)

var titleCaser = cases.Title(language.English)

// BackupTask is an entity bound to a Hyper Backup task.
type BackupTask[C coordinator.Reader] struct {
	Base[C]

	taskID             int
	deviceName         string
	deviceManufacturer string
	deviceModel        string
	name               string
}

// NewBackupTask builds a backup-task entity. An unresolved task id is an
// explicit error, not a fault.
func NewBackupTask[C coordinator.Reader](source Source, coord C, description Description, taskID int) (*BackupTask[C], error) {
	base, err := NewBase(source, coord, description)
	if err != nil {
		return nil, err
	}

	hyperBackup := source.HyperBackup()
	if hyperBackup == nil {
		return nil, fmt.Errorf("%w: hyper_backup", ErrSnapshotMissing)
	}
	task := hyperBackup.GetTask(taskID)
	if task == nil {
		return nil, fmt.Errorf("%w: task %d", ErrTaskNotFound, taskID)
	}

	b := &BackupTask[C]{Base: *base, taskID: taskID}
	b.deviceName = task.Name
	b.deviceManufacturer = Manufacturer
	b.deviceModel = formatTransferType(task.TransferType)
	b.name = fmt.Sprintf("%s %s", task.Name, description.Name)

	information := source.Information()
	b.uniqueID += fmt.Sprintf("_hyper_%d", taskID)
	b.deviceInfo = DeviceInfo{
		Identifiers:      []string{identifier(fmt.Sprintf("%s_hyper_%d", information.Serial, taskID))},
		Name:             b.deviceName,
		Manufacturer:     b.deviceManufacturer,
		Model:            b.deviceModel,
		ViaDevice:        identifier(information.Serial),
		ConfigurationURL: source.ConfigURL(),
	}
	return b, nil
}

// TaskID is the backup task id the entity was resolved against.
func (b *BackupTask[C]) TaskID() int {
	return b.taskID
}

// Name is the entity display name, "{task name} {description name}".
func (b *BackupTask[C]) Name() string {
	return b.name
}

// DeviceName is the task name used for the device record.
func (b *BackupTask[C]) DeviceName() string {
	return b.deviceName
}

// DeviceModel is the display model derived from the task transfer type.
func (b *BackupTask[C]) DeviceModel() string {
	return b.deviceModel
}

// formatTransferType derives a display model from a task transfer type:
// "image_local" becomes "Local Image Backup Task".
func formatTransferType(transferType string) string {
	if strings.HasPrefix(transferType, "image_") {
		transferType = transferType[6:] + " image"
	}
	return titleCaser.String(strings.ReplaceAll(transferType, "_", " ")) + " Backup Task"
}
