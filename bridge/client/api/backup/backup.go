// Package backup models the SYNO.Backup.Task snapshot: Hyper Backup tasks
// configured on the NAS.
package backup

import (
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
)

// API is the capability key for the Hyper Backup snapshot.
const API = "SYNO.Backup.Task"

// Task is a single Hyper Backup task.
type Task struct {
	TaskID                int    `mapstructure:"task_id"`
	Name                  string `mapstructure:"name"`
	State                 string `mapstructure:"state"`
	Status                string `mapstructure:"status"`
	TransferType          string `mapstructure:"transfer_type"`
	DataType              string `mapstructure:"data_type"`
	NextBackupTime        string `mapstructure:"next_bkp_time"`
	LastBackupTime        string `mapstructure:"last_bkp_time"`
	LastBackupSuccessTime string `mapstructure:"last_bkp_success_time"`
	LastBackupResult      string `mapstructure:"last_bkp_result"`
}

// HyperBackup is a point-in-time view of the Hyper Backup task list.
type HyperBackup struct {
	Tasks []Task `mapstructure:"task_list"`
}

// GetTask returns the task with the given id, or nil when absent.
func (h *HyperBackup) GetTask(id int) *Task {
	for i := range h.Tasks {
		if h.Tasks[i].TaskID == id {
			return &h.Tasks[i]
		}
	}
	return nil
}

// TaskIDs lists the ids of all known tasks.
func (h *HyperBackup) TaskIDs() []int {
	ids := make([]int, 0, len(h.Tasks))
	for _, t := range h.Tasks {
		ids = append(ids, t.TaskID)
	}
	return ids
}

type ListRequest struct {
	api.BaseRequest
	Additional []string `synology:"additional"`
}

type ListResponse struct {
	api.BaseResponse
	HyperBackup `mapstructure:",squash"`
}

func NewListRequest() ListRequest {
	return ListRequest{
		BaseRequest: api.NewRequest(API, "list"),
		Additional:  []string{"status", "transfer_type", "next_bkp_time"},
	}
}
