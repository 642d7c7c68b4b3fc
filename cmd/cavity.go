/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gostokes/mesh"
	"github.com/notargets/gostokes/stokes"
	"github.com/notargets/gostokes/utils"
)

type ModelCavity struct {
	Divisions int
	Pairs     []string
	Workers   int
	Profile   bool
}

// CavityCmd represents the cavity command
var CavityCmd = &cobra.Command{
	Use:   "cavity",
	Short: "Lid-driven cavity benchmark over the stable element pairs",
	Long: `
Solves the lid-driven cavity with each configured velocity/pressure pair on a
shared triangulated unit square and reports the solution norms`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cavity called")
		mc := &ModelCavity{}
		mc.Divisions, _ = cmd.Flags().GetInt("divisions")
		mc.Pairs, _ = cmd.Flags().GetStringSlice("pair")
		mc.Workers, _ = cmd.Flags().GetInt("workers")
		mc.Profile, _ = cmd.Flags().GetBool("profile")
		sc := processScenario(mc)
		RunCavity(mc, sc)
	},
}

func init() {
	rootCmd.AddCommand(CavityCmd)
	CavityCmd.Flags().IntP("divisions", "k", 16, "number of cell divisions per direction")
	CavityCmd.Flags().StringSliceP("pair", "p", nil,
		"element pair to run, repeatable: TaylorHood, MINI, CrouzeixRaviart")
	CavityCmd.Flags().IntP("workers", "w", 1, "number of worker ranks")
	CavityCmd.Flags().Bool("profile", false, "write a CPU profile to the working directory")
}

// processScenario overlays the config file and the command line onto the
// default scenario.
func processScenario(mc *ModelCavity) (sc stokes.Scenario) {
	sc = stokes.DefaultScenario()
	if path := configPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if err = yaml.Unmarshal(data, &sc); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	}
	if mc.Divisions > 0 {
		sc.Divisions = [2]int{mc.Divisions, mc.Divisions}
	}
	if len(mc.Pairs) != 0 {
		sc.Pairs = mc.Pairs
	}
	return
}

func RunCavity(mc *ModelCavity, sc stokes.Scenario) {
	if mc.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	fmt.Printf("[%dx%d]\t\t= Divisions\n", sc.Divisions[0], sc.Divisions[1])
	fmt.Printf("%v\t= Element Pairs\n", sc.Pairs)
	fmt.Printf("[%d]\t\t\t= Workers\n", mc.Workers)

	report := func(results []stokes.Result, errs []error) {
		for i, res := range results {
			if errs[i] != nil {
				fmt.Printf("%-16s failed: %s\n", res.Pair, errs[i].Error())
				continue
			}
			fmt.Println(res.String())
		}
	}

	if mc.Workers <= 1 {
		results, errs, err := stokes.Run(sc, nil)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		report(results, errs)
		return
	}

	wg := utils.NewWorkerGroup(mc.Workers)
	wg.Run(func(myThread int) {
		comm := mesh.NewGroupComm(wg, myThread)
		results, errs, err := stokes.Run(sc, comm)
		if myThread != 0 {
			return
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			return
		}
		report(results, errs)
	})
}
