package zwave

// Reconcile 计算关联组的最小增删集合：
//   - Add    = desired - current
//   - Remove = current - desired，且排除 lifeline 节点
//
// 输出顺序为输入顺序（不排序）；无法解析的节点号与重复节点号被忽略。
func Reconcile(group int, desired, current []string) AssociationDelta {
	want := parseNodeSet(desired)
	have := parseNodeSet(current)

	delta := AssociationDelta{Group: group, Add: []int{}, Remove: []int{}}
	for _, id := range want.order {
		if !have.members[id] {
			delta.Add = append(delta.Add, id)
		}
	}
	for _, id := range have.order {
		if id == LifelineNode {
			continue
		}
		if !want.members[id] {
			delta.Remove = append(delta.Remove, id)
		}
	}
	return delta
}

type nodeSet struct {
	order   []int
	members map[int]bool
}

func parseNodeSet(ids []string) nodeSet {
	s := nodeSet{members: make(map[int]bool, len(ids))}
	for _, raw := range ids {
		id, err := ParseNodeID(raw)
		if err != nil || s.members[id] {
			continue
		}
		s.members[id] = true
		s.order = append(s.order, id)
	}
	return s
}

// ResultingSize 应用增删后关联组内的节点数：合法且去重的 desired 节点，
// 加上仍保留的 lifeline 节点
func ResultingSize(desired, current []string) int {
	want := parseNodeSet(desired)
	n := len(want.order)
	if !want.members[LifelineNode] && parseNodeSet(current).members[LifelineNode] {
		n++
	}
	return n
}
