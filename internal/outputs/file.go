package outputs

import (
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
)

// FileOutput writes the duty to a file, e.g. to hand it over to another process
type FileOutput struct {
	ID     string
	Config configuration.FileOutputConfig
}

func (o *FileOutput) GetId() string {
	return o.ID
}

func (o *FileOutput) GetLabel() string {
	return o.Config.Path
}

func (o *FileOutput) SetDuty(duty int) error {
	path, err := util.ExpandHomeDir(o.Config.Path)
	if err != nil {
		return err
	}
	return util.WriteIntToFileAtomic(coerceDuty(duty), path)
}

func (o *FileOutput) GetDuty() (int, error) {
	path, err := util.ExpandHomeDir(o.Config.Path)
	if err != nil {
		return 0, err
	}
	return util.ReadIntFromFile(path)
}

func (o *FileOutput) Close() error {
	return o.SetDuty(MinDuty)
}
