package zwave

// 能力命令名
const (
	CommandRefreshManufacturer     = "refreshManufacturer"
	CommandSupportedConfigurations = "supportedConfigurations"
	CommandUpdateConfiguration     = "updateConfiguration"
	CommandUpdateAssociations      = "updateAssociations"
)

// Command 下发给设备能力的命令 {command, arguments}
type Command struct {
	Name      string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// RefreshManufacturer 请求设备重新上报厂商信息
func RefreshManufacturer() Command {
	return Command{Name: CommandRefreshManufacturer}
}

// SupportedConfigurations 告知设备需要上报的参数号列表
func SupportedConfigurations(parameters []int) Command {
	if parameters == nil {
		parameters = []int{}
	}
	return Command{Name: CommandSupportedConfigurations, Arguments: []any{parameters}}
}

// UpdateConfiguration 参数写入命令：[参数号, 小端序字节, 恢复默认?1:0]
// reset 为 true 时字节仍按默认值编码，设备侧以标志位为准
func UpdateConfiguration(parameter int, value []byte, reset bool) Command {
	bytes := make([]int, len(value))
	for i, b := range value {
		bytes[i] = int(b)
	}
	flag := 0
	if reset {
		flag = 1
	}
	return Command{Name: CommandUpdateConfiguration, Arguments: []any{parameter, bytes, flag}}
}

// UpdateAssociations 关联组增删命令：[组号, 新增节点, 移除节点]
func UpdateAssociations(delta AssociationDelta) Command {
	add := delta.Add
	if add == nil {
		add = []int{}
	}
	remove := delta.Remove
	if remove == nil {
		remove = []int{}
	}
	return Command{Name: CommandUpdateAssociations, Arguments: []any{delta.Group, add, remove}}
}
