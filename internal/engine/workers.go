package engine

import "fmt"

// AssignWorker moves one idle worker into role.
func (g *Game) AssignWorker(role Role) Outcome {
	s := g.state
	if err := g.checkRole(role); err != nil {
		return g.fail(CmdAssignWorker, err)
	}
	if s.Workers[RoleIdle] == 0 {
		return g.fail(CmdAssignWorker,
			fmt.Errorf("%w: no idle workers", ErrInvalidWorkerOperation),
			"You have no idle workers to assign.")
	}
	if s.AssignedWorkers() >= s.Buildings.MaxWorkers {
		return g.fail(CmdAssignWorker,
			fmt.Errorf("%w: capacity %d reached", ErrInvalidWorkerOperation, s.Buildings.MaxWorkers),
			"Your shelters cannot support another working hand.")
	}
	s.Workers[RoleIdle]--
	s.Workers[role]++
	return g.done(CmdAssignWorker, fmt.Sprintf("A worker joins the %s. (%d now)", role, s.Workers[role]))
}

// RemoveWorker returns one worker from role to idle.
func (g *Game) RemoveWorker(role Role) Outcome {
	s := g.state
	if role == RoleIdle || !knownRole(role) {
		return g.fail(CmdRemoveWorker, fmt.Errorf("%w: cannot remove from %q", ErrInvalidWorkerOperation, role))
	}
	if s.Workers[role] == 0 {
		return g.fail(CmdRemoveWorker,
			fmt.Errorf("%w: no %s to remove", ErrInvalidWorkerOperation, role),
			fmt.Sprintf("You have no %s to reassign.", role))
	}
	s.Workers[role]--
	s.Workers[RoleIdle]++
	return g.done(CmdRemoveWorker, fmt.Sprintf("One of your %s is now idle.", role))
}

// HireWorker pays gold for a new gatherer, if housing allows.
func (g *Game) HireWorker() Outcome {
	s := g.state
	if s.TotalWorkers() >= s.Buildings.MaxWorkers {
		return g.fail(CmdHireWorker,
			fmt.Errorf("%w: no room for another worker", ErrInvalidWorkerOperation),
			"There is no room in your shelters for another worker.")
	}
	if !g.canAfford(hireCost) {
		return g.insufficient(CmdHireWorker, "hire a worker", hireCost)
	}
	g.spend(hireCost)
	s.Workers[RoleGatherer]++
	return g.done(CmdHireWorker, "You hired an additional gatherer.")
}

func (g *Game) checkRole(role Role) error {
	if role == RoleIdle || !knownRole(role) || !g.variant.HasRole(role) {
		return fmt.Errorf("%w: %q is not an assignable role", ErrInvalidWorkerOperation, role)
	}
	b := g.state.Buildings
	if role == RoleBlacksmith && !b.Blacksmith {
		return fmt.Errorf("%w: blacksmiths need a forge", ErrInvalidWorkerOperation)
	}
	if role == RoleFarmer && !b.Farm {
		return fmt.Errorf("%w: farmers need a farm", ErrInvalidWorkerOperation)
	}
	return nil
}

func knownRole(r Role) bool {
	for _, x := range AllRoles {
		if x == r {
			return true
		}
	}
	return false
}

// adjustWorkersAfterShelterLoss evicts workers until the total fits the
// remaining housing, in a fixed priority order.
func (g *Game) adjustWorkersAfterShelterLoss() []string {
	s := g.state
	deficit := s.TotalWorkers() - s.Buildings.MaxWorkers
	var lines []string
	for _, role := range evictionOrder {
		if deficit <= 0 {
			break
		}
		n := s.Workers[role]
		if n == 0 {
			continue
		}
		leave := min(n, deficit)
		s.Workers[role] -= leave
		deficit -= leave
		lines = append(lines, fmt.Sprintf("%d %s left with nowhere to sleep.", leave, role))
	}
	return lines
}
